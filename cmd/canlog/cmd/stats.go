package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/logfile"
	"github.com/tracebus/canlog/pkg/stats"
)

var statsJSON bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <capture>",
	Short: "Summarize a capture file",
	Long: `Scan a capture file and print message volume, frame-type
breakdown, per-ID counts and inter-arrival timing.

Example:
  canlog stats capture.csv
  canlog stats --json capture.csv.gz`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := logfile.OpenInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		summary, err := stats.Collect(csvlog.NewReader(in))
		if err != nil {
			return err
		}

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		fmt.Printf("messages:        %d\n", summary.Messages)
		fmt.Printf("extended frames: %d\n", summary.ExtendedFrames)
		fmt.Printf("remote frames:   %d\n", summary.RemoteFrames)
		fmt.Printf("error frames:    %d\n", summary.ErrorFrames)
		fmt.Printf("payload bytes:   %d\n", summary.PayloadBytes)
		fmt.Printf("duration:        %.6fs\n", summary.Duration)
		fmt.Printf("rate:            %.1f msg/s\n", summary.Rate)
		fmt.Printf("inter-arrival:   mean=%.6fs median=%.6fs p95=%.6fs p99=%.6fs\n",
			summary.InterArrival.Mean, summary.InterArrival.Median,
			summary.InterArrival.P95, summary.InterArrival.P99)

		ids := make([]uint32, 0, len(summary.PerID))
		for id := range summary.PerID {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			fmt.Printf("  0x%-8x %d\n", id, summary.PerID[id])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit the summary as JSON")
}
