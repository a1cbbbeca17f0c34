// Package stats summarizes a capture in a single pass: message volume,
// frame-type breakdown, per-ID counts and inter-arrival timing.
package stats

import (
	"io"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/tracebus/canlog/pkg/message"
)

// Source is anything that yields messages one at a time, ending with io.EOF.
type Source interface {
	ReadNext() (*message.Message, error)
}

// InterArrival holds timing statistics over the gaps between consecutive
// messages, in seconds.
type InterArrival struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Summary is the result of scanning a capture.
type Summary struct {
	Messages       int            `json:"messages"`
	ExtendedFrames int            `json:"extended_frames"`
	RemoteFrames   int            `json:"remote_frames"`
	ErrorFrames    int            `json:"error_frames"`
	PayloadBytes   int64          `json:"payload_bytes"`
	Start          float64        `json:"start"`
	End            float64        `json:"end"`
	Duration       float64        `json:"duration"`
	Rate           float64        `json:"rate"` // messages per second
	PerID          map[uint32]int `json:"per_id"`
	InterArrival   InterArrival   `json:"inter_arrival"`
}

// Collect drains src and accumulates a Summary. An empty capture yields a
// zero Summary and no error.
func Collect(src Source) (*Summary, error) {
	s := &Summary{PerID: make(map[uint32]int)}

	var gaps []float64
	var prev float64
	for {
		msg, err := src.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "scanning capture")
		}

		if s.Messages == 0 {
			s.Start = msg.Timestamp
		} else {
			gaps = append(gaps, msg.Timestamp-prev)
		}
		prev = msg.Timestamp
		s.End = msg.Timestamp

		s.Messages++
		s.PerID[msg.ArbitrationID]++
		s.PayloadBytes += int64(len(msg.Data))
		if msg.IsExtendedID {
			s.ExtendedFrames++
		}
		if msg.IsRemoteFrame {
			s.RemoteFrames++
		}
		if msg.IsErrorFrame {
			s.ErrorFrames++
		}
	}

	if s.Messages > 1 {
		s.Duration = s.End - s.Start
		if s.Duration > 0 {
			s.Rate = float64(s.Messages) / s.Duration
		}
	}

	if len(gaps) > 0 {
		var err error
		if s.InterArrival.Mean, err = stats.Mean(gaps); err != nil {
			return nil, errors.Wrap(err, "inter-arrival mean")
		}
		if s.InterArrival.Median, err = stats.Median(gaps); err != nil {
			return nil, errors.Wrap(err, "inter-arrival median")
		}
		if s.InterArrival.P95, err = stats.Percentile(gaps, 95); err != nil {
			return nil, errors.Wrap(err, "inter-arrival p95")
		}
		if s.InterArrival.P99, err = stats.Percentile(gaps, 99); err != nil {
			return nil, errors.Wrap(err, "inter-arrival p99")
		}
	}

	return s, nil
}
