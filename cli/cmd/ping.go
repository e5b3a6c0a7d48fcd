package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check store liveness",
	Run: func(cmd *cobra.Command, _ []string) {
		reg, done := newRegistry()
		defer done()
		checkErr(reg.Ping(cmd.Context()))
		fmt.Println("PONG")
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
