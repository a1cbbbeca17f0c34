package csvlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tracebus/canlog/pkg/message"
)

// Reader decodes capture records from a text stream, one line at a time.
// It is forward-only and not restartable: records are parsed lazily as the
// caller asks for them, never buffered ahead.
//
// A Reader constructed with OpenReader owns its file and closes it when the
// stream is exhausted or the Reader is closed. A Reader constructed with
// NewReader borrows the stream and never closes it.
type Reader struct {
	scanner       *bufio.Scanner
	file          *os.File // non-nil only when the Reader opened the path itself
	headerSkipped bool
	stopOnce      sync.Once
	stopErr       error
	onStop        []func()
}

// OpenReader opens the capture file at path for reading. The returned
// Reader owns the file handle.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f)
	r.file = f
	return r, nil
}

// NewReader wraps an already-open text stream. The stream is borrowed: the
// caller keeps ownership and must close it.
func NewReader(in io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(in)}
}

// OnStop registers fn to run exactly once when the reader reaches end of
// input or is closed, whichever happens first. Collaborators use this to
// release resources tied to the reader's lifecycle without having to watch
// for exhaustion themselves.
func (r *Reader) OnStop(fn func()) {
	r.onStop = append(r.onStop, fn)
}

// ReadNext returns the next record, or io.EOF once the stream is exhausted.
// The first line of the stream is the header and is discarded unread; a
// stream with no lines at all is an empty capture, not an error.
//
// A line that fails to parse returns a *MalformedRecordError. The line is
// consumed either way, so calling ReadNext again continues with the line
// after it.
func (r *Reader) ReadNext() (*message.Message, error) {
	if !r.headerSkipped {
		r.headerSkipped = true
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, err
			}
			r.stop()
			return nil, io.EOF
		}
	}

	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		r.stop()
		return nil, io.EOF
	}

	return parseLine(r.scanner.Text())
}

// parseLine decodes one content line into a message, validating every field.
func parseLine(line string) (*message.Message, error) {
	fields := strings.Split(line, ",")
	if len(fields) != fieldCount {
		return nil, &MalformedRecordError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", fieldCount, len(fields)),
		}
	}

	ts, err := parseTimestamp(fields[0])
	if err != nil {
		return nil, &MalformedRecordError{Line: line, Reason: "invalid timestamp", Err: err}
	}

	id, err := parseID(fields[1])
	if err != nil {
		return nil, &MalformedRecordError{Line: line, Reason: "invalid arbitration_id", Err: err}
	}

	dlc, err := parseDLC(fields[5])
	if err != nil {
		return nil, &MalformedRecordError{Line: line, Reason: "invalid dlc", Err: err}
	}

	data, err := parseData(fields[6])
	if err != nil {
		return nil, &MalformedRecordError{Line: line, Reason: "invalid base64 data", Err: err}
	}

	return &message.Message{
		Timestamp:     ts,
		ArbitrationID: id,
		IsExtendedID:  parseFlag(fields[2]),
		IsRemoteFrame: parseFlag(fields[3]),
		IsErrorFrame:  parseFlag(fields[4]),
		DLC:           dlc,
		Data:          data,
	}, nil
}

// stop fires the stop listeners and releases an owned file, at most once.
func (r *Reader) stop() error {
	r.stopOnce.Do(func() {
		for _, fn := range r.onStop {
			fn()
		}
		if r.file != nil {
			r.stopErr = r.file.Close()
		}
	})
	return r.stopErr
}

// Close stops the reader early. It is safe to call after exhaustion and
// safe to call more than once.
func (r *Reader) Close() error {
	return r.stop()
}

// Iterator returns a forward-only cursor over the remaining records.
func (r *Reader) Iterator() *Iterator {
	return &Iterator{reader: r}
}

// Iterator is a cursor over a Reader in the scanner style: Next advances,
// Message returns the current record, Err reports why iteration stopped.
type Iterator struct {
	reader *Reader
	msg    *message.Message
	err    error
}

// Next advances to the next record. It returns false at end of input or on
// the first malformed line; Err distinguishes the two.
func (it *Iterator) Next() bool {
	msg, err := it.reader.ReadNext()
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		return false
	}
	it.msg = msg
	return true
}

// Message returns the record read by the last successful Next.
func (it *Iterator) Message() *message.Message {
	return it.msg
}

// Err returns the error that ended iteration, or nil after a clean end of
// input.
func (it *Iterator) Err() error {
	return it.err
}

// Close stops the underlying reader.
func (it *Iterator) Close() error {
	return it.reader.stop()
}
