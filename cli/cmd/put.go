package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <name> <bit> [bit ...]",
	Short: "Store an element with exactly the given bits set",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		bits, err := parseBits(args[1:])
		if err != nil {
			bailf(exitUsage, "error: %v", err)
		}
		reg, done := newRegistry()
		defer done()
		checkErr(reg.Put(cmd.Context(), name, bits...))
		fmt.Printf("OK: stored %s and updated index\n", reg.Keys().Element(name))
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
