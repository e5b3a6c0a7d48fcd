package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bitdex/bitdex/ql"
)

var (
	findStore bool
	findTTL   int
)

var header = color.New(color.FgCyan)

func printMembers(members []string) {
	sort.Strings(members)
	fmt.Printf("Count: %d\n", len(members))
	for _, member := range members {
		fmt.Printf(" - %s\n", member)
	}
}

var findCmd = &cobra.Command{
	Use:   "find <bit> | find '<expression>'",
	Short: "Query the index: a single bit, or a composite expression",
	Long: `Query the per-bit index. A bare integer lists the members of one bit's
membership set. A composite expression combines sets:

  all(1,2)        elements having every listed bit
  any(1,3)        elements having at least one listed bit
  not(1; 2,3)     elements having bit 1 and none of 2,3
  unot(2,3)       all known elements except those having any of 2,3
  allnot(1; 2,3)  elements having bit 1 and none of 2,3, scoped to the universe

With --store the result is materialized under a fresh key that expires after
--ttl seconds; the key and cardinality are printed instead of the members.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if bit, err := strconv.Atoi(args[0]); err == nil {
			findSingle(cmd, bit)
			return
		}
		eng, done := newEngine()
		defer done()
		ttl := 0
		if findStore {
			ttl = findTTL
		}
		res, err := ql.Run(cmd.Context(), eng, args[0], ttl)
		checkErr(err)
		if res.Stored != nil {
			header.Printf("Key: %s\n", res.Stored.Key)
			fmt.Printf("Count: %d\n", res.Stored.Count)
			return
		}
		header.Printf("Query: %s\n", args[0])
		printMembers(res.Members)
	},
}

func findSingle(cmd *cobra.Command, bit int) {
	if findStore {
		bailf(exitUsage, "error: --store applies to composite expressions only")
	}
	reg, done := newRegistry()
	defer done()
	members, err := reg.Find(cmd.Context(), bit)
	checkErr(err)
	header.Printf("Index: %s\n", reg.Keys().IdxBit(bit))
	printMembers(members)
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.PersistentFlags().BoolVarP(&findStore, "store", "", false, "materialize the result under a fresh TTL-bounded key")
	findCmd.PersistentFlags().IntVarP(&findTTL, "ttl", "", 60, "ttl in seconds for --store")
}
