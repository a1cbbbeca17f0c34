package replay

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracebus/canlog/pkg/message"
)

// sliceSource yields a fixed set of messages, then io.EOF.
type sliceSource struct {
	msgs []message.Message
	pos  int
}

func (s *sliceSource) ReadNext() (*message.Message, error) {
	if s.pos >= len(s.msgs) {
		return nil, io.EOF
	}
	msg := &s.msgs[s.pos]
	s.pos++
	return msg, nil
}

func TestReplay_DeliversInOrder(t *testing.T) {
	src := &sliceSource{msgs: []message.Message{
		{Timestamp: 1.0, ArbitrationID: 0x100},
		{Timestamp: 1.0, ArbitrationID: 0x200},
		{Timestamp: 1.0, ArbitrationID: 0x300},
	}}

	var ids []uint32
	r := New(Options{})

	n, err := r.Replay(context.Background(), src, func(m *message.Message) error {
		ids = append(ids, m.ArbitrationID)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []uint32{0x100, 0x200, 0x300}, ids)
}

func TestReplay_EmptySource(t *testing.T) {
	r := New(Options{})

	n, err := r.Replay(context.Background(), &sliceSource{}, func(*message.Message) error {
		t.Fatal("sink must not run for an empty capture")
		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplay_PacesByTimestampDelta(t *testing.T) {
	mock := clock.NewMock()
	src := &sliceSource{msgs: []message.Message{
		{Timestamp: 10.0, ArbitrationID: 0x1},
		{Timestamp: 12.5, ArbitrationID: 0x2}, // 2.5s after the first
	}}

	delivered := make(chan uint32, 2)
	r := New(Options{Clock: mock})

	done := make(chan struct{})
	var n int
	var err error
	go func() {
		defer close(done)
		n, err = r.Replay(context.Background(), src, func(m *message.Message) error {
			delivered <- m.ArbitrationID
			return nil
		})
	}()

	// First message goes out with no delay.
	assert.Equal(t, uint32(0x1), <-delivered)

	// The second waits on the mock clock; advance it in small steps until
	// the 2.5s delta elapses.
	for {
		select {
		case id := <-delivered:
			assert.Equal(t, uint32(0x2), id)
			<-done
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			return
		default:
			mock.Add(100 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestReplay_SpeedScalesDelay(t *testing.T) {
	mock := clock.NewMock()
	src := &sliceSource{msgs: []message.Message{
		{Timestamp: 0.0, ArbitrationID: 0x1},
		{Timestamp: 10.0, ArbitrationID: 0x2},
	}}

	delivered := make(chan uint32, 2)
	r := New(Options{Clock: mock, Speed: 10.0})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Replay(context.Background(), src, func(m *message.Message) error {
			delivered <- m.ArbitrationID
			return nil
		})
	}()

	assert.Equal(t, uint32(0x1), <-delivered)

	// At 10x the 10s gap shrinks to 1s of mock time.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case id := <-delivered:
			assert.Equal(t, uint32(0x2), id)
			<-done
			return
		case <-deadline:
			t.Fatal("second message never delivered")
		default:
			mock.Add(100 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestReplay_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &sliceSource{msgs: []message.Message{
		{Timestamp: 0.0},
		{Timestamp: 3600.0}, // an hour-long gap the test never waits out
	}}

	r := New(Options{})

	done := make(chan struct{})
	var n int
	var err error
	go func() {
		defer close(done)
		n, err = r.Replay(ctx, src, func(*message.Message) error { return nil })
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("replay did not observe cancellation")
	}

	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, n, 1)
}

func TestReplay_SinkErrorAborts(t *testing.T) {
	src := &sliceSource{msgs: []message.Message{
		{Timestamp: 1.0, ArbitrationID: 0x1},
		{Timestamp: 1.0, ArbitrationID: 0x2},
	}}

	sinkErr := errors.New("bus unavailable")
	r := New(Options{})

	n, err := r.Replay(context.Background(), src, func(*message.Message) error {
		return sinkErr
	})

	assert.ErrorIs(t, err, sinkErr)
	assert.Zero(t, n)
}

func TestReplay_NegativeDeltaDoesNotSleep(t *testing.T) {
	// Out-of-order timestamps happen in merged captures; they must not
	// produce a negative sleep or a stall.
	src := &sliceSource{msgs: []message.Message{
		{Timestamp: 5.0, ArbitrationID: 0x1},
		{Timestamp: 2.0, ArbitrationID: 0x2},
	}}

	r := New(Options{})

	n, err := r.Replay(context.Background(), src, func(*message.Message) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
