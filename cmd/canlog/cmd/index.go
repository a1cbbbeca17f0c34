package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/index"
	"github.com/tracebus/canlog/pkg/logfile"
)

var indexDir string

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the per-ID capture index",
	Long: `Build and query a persistent per-arbitration-ID summary of a
capture file, so large captures can be inspected repeatedly without a
full rescan.`,
}

var indexBuildCmd = &cobra.Command{
	Use:   "build <capture>",
	Short: "Index a capture file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := logfile.OpenInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		ix, err := index.Open(resolveIndexDir())
		if err != nil {
			return err
		}
		defer ix.Close()

		n, err := ix.Build(csvlog.NewReader(in))
		if err != nil {
			return err
		}

		log.WithField("messages", n).Info("index built")
		return nil
	},
}

var indexShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show indexed summaries, optionally for one arbitration ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := index.Open(resolveIndexDir())
		if err != nil {
			return err
		}
		defer ix.Close()

		if len(args) == 1 {
			id, err := parseArbitrationID(args[0])
			if err != nil {
				return err
			}
			entry, err := ix.Lookup(id)
			if err != nil {
				return err
			}
			printEntry(entry)
			return nil
		}

		entries, err := ix.Entries()
		if err != nil {
			return err
		}
		for i := range entries {
			printEntry(&entries[i])
		}
		return nil
	},
}

func resolveIndexDir() string {
	if indexDir != "" {
		return indexDir
	}
	return filepath.Join(cfg.DataDir, "index")
}

func parseArbitrationID(s string) (uint32, error) {
	if len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
	}
	id, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid arbitration id %q: %w", s, err)
	}
	return uint32(id), nil
}

func printEntry(e *index.Entry) {
	fmt.Printf("0x%-8x count=%-8d first=%.6f last=%.6f bytes=%d\n",
		e.ArbitrationID, e.Count, e.FirstTimestamp, e.LastTimestamp, e.PayloadBytes)
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexShowCmd)
	indexCmd.PersistentFlags().StringVar(&indexDir, "index-dir", "", "Index location (defaults to <data_dir>/index)")
}
