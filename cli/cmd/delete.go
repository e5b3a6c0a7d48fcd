package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove an element from the store and the index",
	Long: `Remove an element: its record, its universe membership, and its entry in
every per-bit membership set. When the record's flags cannot be read the
deletion fails unless --force is given, in which case all 4096 index keys
are scrubbed. The forced sweep is expensive.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, done := newRegistry()
		defer done()
		checkErr(reg.Delete(cmd.Context(), args[0], deleteForce))
		fmt.Printf("OK: deleted %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.PersistentFlags().BoolVarP(&deleteForce, "force", "f", false, "scrub all index keys when the record is unreadable")
}
