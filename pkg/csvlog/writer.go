package csvlog

import (
	"io"
	"os"
	"strings"

	"github.com/tracebus/canlog/pkg/message"
)

// Writer appends capture records to a text stream, one formatted line per
// message. Every Write goes straight to the underlying stream; nothing is
// buffered between calls, so the output line order is exactly the call
// order and an I/O failure surfaces on the call that caused it.
//
// A Writer constructed with OpenWriter owns its file and closes it on
// Close. A Writer constructed with NewWriter borrows the stream and never
// closes it.
type Writer struct {
	out     io.Writer
	file    *os.File // non-nil only when the Writer opened the path itself
	newline string
}

// OpenWriter opens the capture file at path for writing. With appendMode
// false the file is truncated and the header line is written immediately;
// with appendMode true records are added after the existing contents and no
// header is written.
func OpenWriter(path string, appendMode bool) (*Writer, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}

	w, err := NewWriter(f, appendMode)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewWriter wraps an already-open text stream. The stream is borrowed: the
// caller keeps ownership and must close it. With appendMode false the
// header line is written immediately.
func NewWriter(out io.Writer, appendMode bool) (*Writer, error) {
	w := &Writer{out: out, newline: lineTerminator()}
	if !appendMode {
		if _, err := io.WriteString(out, header+w.newline); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Write appends msg as one comma-joined line followed by the platform line
// terminator. Stream failures propagate unchanged; there is no retry.
func (w *Writer) Write(msg *message.Message) error {
	fields := [fieldCount]string{
		formatTimestamp(msg.Timestamp),
		formatID(msg.ArbitrationID),
		formatFlag(msg.IsExtendedID),
		formatFlag(msg.IsRemoteFrame),
		formatFlag(msg.IsErrorFrame),
		formatDLC(msg.DLC),
		formatData(msg.Data),
	}
	_, err := io.WriteString(w.out, strings.Join(fields[:], ",")+w.newline)
	return err
}

// Close releases an owned file. For borrowed streams it is a no-op.
func (w *Writer) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
