package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename an element, re-keying its record and index entries",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		reg, done := newRegistry()
		defer done()
		checkErr(reg.Rename(cmd.Context(), args[0], args[1]))
		fmt.Printf("OK: renamed %s to %s\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
