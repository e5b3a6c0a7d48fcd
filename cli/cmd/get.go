package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show an element's flags",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		reg, done := newRegistry()
		defer done()
		flags, err := reg.Get(cmd.Context(), name)
		checkErr(err)
		if getJSON {
			out := struct {
				Name string `json:"name"`
				Hex  string `json:"hex"`
				Bits []int  `json:"bits"`
			}{Name: name, Hex: flags.Hex(), Bits: flags.SetBits()}
			// encoding failures are local to the CLI, not store failures
			if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
				bailf(exitUsage, "error encoding response: %v", err)
			}
			return
		}
		fmt.Printf("Key: %s\n", reg.Keys().Element(name))
		fmt.Printf("Hex: %s\n", flags.Hex())
		fmt.Printf("Bits: %v\n", flags.SetBits())
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.PersistentFlags().BoolVarP(&getJSON, "json", "", false, "Output in JSON format")
}
