package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/logfile"
)

var dumpFormat string

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <capture>",
	Short: "Print the records in a capture file",
	Long: `Print every record in a capture file. Compressed captures
(.gz, .zst) are decompressed transparently.

Example:
  canlog dump capture.csv
  canlog dump --format csv capture.csv.zst`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := logfile.OpenInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		reader := csvlog.NewReader(in)

		var writer *csvlog.Writer
		if dumpFormat == "csv" {
			writer, err = csvlog.NewWriter(os.Stdout, false)
			if err != nil {
				return err
			}
		}

		for {
			msg, err := reader.ReadNext()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if writer != nil {
				if err := writer.Write(msg); err != nil {
					return err
				}
			} else {
				fmt.Println(msg)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "text", "Output format: text or csv")
}
