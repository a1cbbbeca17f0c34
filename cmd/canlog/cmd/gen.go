package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/logfile"
	"github.com/tracebus/canlog/pkg/message"
)

var (
	genCount int
	genSeed  int64
)

// genCmd represents the gen command
var genCmd = &cobra.Command{
	Use:   "gen [file]",
	Short: "Generate a synthetic capture file",
	Long: `Generate a capture file of synthetic bus traffic, useful for
testing downstream tooling. Without a file argument a unique name of the
form capture-<id>.csv is chosen.

Example:
  canlog gen --count 1000
  canlog gen --count 100 --seed 42 fixture.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fmt.Sprintf("capture-%s.csv", ksuid.New())
		if len(args) == 1 {
			path = args[0]
		}

		seed := genSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))

		out, err := logfile.OpenOutput(path, false)
		if err != nil {
			return err
		}

		writer, err := csvlog.NewWriter(out, false)
		if err != nil {
			out.Close()
			return err
		}

		ts := float64(time.Now().Unix())
		for i := 0; i < genCount; i++ {
			ts += rng.ExpFloat64() * 0.01

			msg := message.Message{
				Timestamp:    ts,
				IsExtendedID: rng.Intn(4) == 0,
			}
			if msg.IsExtendedID {
				msg.ArbitrationID = rng.Uint32() & 0x1fffffff
			} else {
				msg.ArbitrationID = rng.Uint32() & 0x7ff
			}
			if rng.Intn(100) == 0 {
				msg.IsRemoteFrame = true
			}

			msg.DLC = uint8(rng.Intn(9))
			msg.Data = make([]byte, msg.DLC)
			rng.Read(msg.Data)

			if err := writer.Write(&msg); err != nil {
				out.Close()
				return err
			}
		}

		if err := out.Close(); err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"records": genCount,
			"file":    path,
			"seed":    seed,
		}).Info("capture generated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genCmd)
	genCmd.Flags().IntVar(&genCount, "count", 100, "Number of records to generate")
	genCmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed (0 picks one from the clock)")
}
