package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type loadRecord struct {
	Name string `json:"name"`
	Bits []int  `json:"bits"`
}

var loadCmd = &cobra.Command{
	Use:   "load <file.jsonl>",
	Short: "Bulk ingest elements from a JSONL file",
	Long: `Read one JSON object per line, each of the form

  {"name": "server-42", "bits": [1, 17, 4095]}

and put each as an element. A malformed line aborts the load; lines before
it have already been stored.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			bailf(exitUsage, "error: %v", err)
		}
		defer f.Close()

		reg, done := newRegistry()
		defer done()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		lineno := 0
		loaded := 0
		for scanner.Scan() {
			lineno++
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var rec loadRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				bailf(exitUsage, "error: %s:%d: %v", args[0], lineno, err)
			}
			if err := reg.Put(cmd.Context(), rec.Name, rec.Bits...); err != nil {
				bailf(exitCode(err), "error: %s:%d: %v", args[0], lineno, err)
			}
			loaded++
		}
		if err := scanner.Err(); err != nil {
			bailf(exitUsage, "error: %v", err)
		}
		fmt.Printf("OK: loaded %d elements\n", loaded)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
