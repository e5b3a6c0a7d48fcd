package cmd

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Dump the members of any set key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, done := newRegistry()
		defer done()
		members, err := reg.Show(cmd.Context(), args[0])
		checkErr(err)
		header.Printf("Key: %s\n", args[0])
		printMembers(members)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
