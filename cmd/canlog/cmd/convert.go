package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/logfile"
)

var convertAppend bool

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encode a capture file",
	Long: `Read a capture file and write it back out, converting between
plain and compressed (.gz, .zst) storage based on the output extension.

Example:
  canlog convert capture.csv capture.csv.zst
  canlog convert --append fresh.csv combined.csv`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := logfile.OpenInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := logfile.OpenOutput(args[1], convertAppend)
		if err != nil {
			return err
		}

		writer, err := csvlog.NewWriter(out, convertAppend)
		if err != nil {
			out.Close()
			return err
		}

		reader := csvlog.NewReader(in)
		records := 0
		for {
			msg, err := reader.ReadNext()
			if err == io.EOF {
				break
			}
			if err != nil {
				out.Close()
				return err
			}
			if err := writer.Write(msg); err != nil {
				out.Close()
				return err
			}
			records++
		}

		if err := out.Close(); err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"records": records,
			"out":     args[1],
		}).Info("capture converted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().BoolVar(&convertAppend, "append", false, "Append to the output instead of truncating it")
}
