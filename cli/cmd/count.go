package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count <bit>",
	Short: "Show the cardinality of one bit's membership set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bit, err := strconv.Atoi(args[0])
		if err != nil {
			bailf(exitUsage, "error: bit %q is not an integer", args[0])
		}
		reg, done := newRegistry()
		defer done()
		n, err := reg.Count(cmd.Context(), bit)
		checkErr(err)
		fmt.Println(n)
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
