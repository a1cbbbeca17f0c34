// Package replay re-delivers a recorded capture with its original timing,
// pacing each message by the timestamp delta to its predecessor.
package replay

import (
	"context"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tracebus/canlog/pkg/message"
)

// Source is anything that yields messages one at a time, ending with io.EOF.
// csvlog.Reader satisfies it.
type Source interface {
	ReadNext() (*message.Message, error)
}

// Sink receives each replayed message. An error from the sink aborts the
// replay.
type Sink func(*message.Message) error

// Options configures a Replayer.
type Options struct {
	// Speed is the playback rate multiplier: 1.0 replays in real time, 2.0
	// twice as fast. Zero or negative selects real time.
	Speed float64

	// Clock drives the pacing. Nil selects the wall clock; tests inject a
	// mock.
	Clock clock.Clock

	// Logger receives progress output. Nil disables it.
	Logger *logrus.Entry
}

// Replayer paces messages from a Source to a Sink.
type Replayer struct {
	speed float64
	clock clock.Clock
	log   *logrus.Entry
}

// New creates a Replayer from opts, filling in defaults.
func New(opts Options) *Replayer {
	if opts.Speed <= 0 {
		opts.Speed = 1.0
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		opts.Logger = logrus.NewEntry(logger)
	}
	return &Replayer{speed: opts.Speed, clock: opts.Clock, log: opts.Logger}
}

// Replay drains src, sleeping the scaled inter-message delta before handing
// each message to sink. It returns the number of messages delivered.
// Cancellation is observed between records; a record in flight is never
// split.
func (r *Replayer) Replay(ctx context.Context, src Source, sink Sink) (int, error) {
	var (
		prev     float64
		havePrev bool
		n        int
	)

	start := r.clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		msg, err := src.ReadNext()
		if err == io.EOF {
			r.log.WithFields(logrus.Fields{
				"messages": n,
				"elapsed":  r.clock.Since(start),
			}).Info("replay finished")
			return n, nil
		}
		if err != nil {
			return n, errors.Wrap(err, "reading capture")
		}

		if havePrev {
			if delta := msg.Timestamp - prev; delta > 0 {
				if err := r.sleep(ctx, time.Duration(delta/r.speed*float64(time.Second))); err != nil {
					return n, err
				}
			}
		}
		prev = msg.Timestamp
		havePrev = true

		if err := sink(msg); err != nil {
			return n, errors.Wrap(err, "replay sink")
		}
		n++

		if n%10000 == 0 {
			r.log.WithField("messages", n).Debug("replay progress")
		}
	}
}

func (r *Replayer) sleep(ctx context.Context, d time.Duration) error {
	timer := r.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
