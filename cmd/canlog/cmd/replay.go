package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/logfile"
	"github.com/tracebus/canlog/pkg/message"
	"github.com/tracebus/canlog/pkg/replay"
)

var replaySpeed float64

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <capture>",
	Short: "Replay a capture with its original timing",
	Long: `Replay a capture file, pacing each message by the recorded
timestamp deltas. The speed factor scales playback: 2.0 runs twice as
fast as the capture, 0.5 at half speed.

Example:
  canlog replay capture.csv
  canlog replay --speed 10 capture.csv.gz`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := logfile.OpenInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		speed := replaySpeed
		if !cmd.Flags().Changed("speed") {
			speed = cfg.Replay.Speed
		}

		r := replay.New(replay.Options{
			Speed:  speed,
			Logger: log,
		})

		n, err := r.Replay(cmd.Context(), csvlog.NewReader(in), func(msg *message.Message) error {
			fmt.Println(msg)
			return nil
		})
		if err != nil {
			return err
		}

		log.WithField("messages", n).Info("replay complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback rate multiplier")
}
