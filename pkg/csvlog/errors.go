package csvlog

import "fmt"

// MalformedRecordError reports a content line that does not parse as a
// record: wrong field count, a non-numeric timestamp or dlc, a non-hex
// arbitration ID, or an invalid base64 payload.
//
// The Reader does not skip past a bad line on its own; callers that want to
// continue can keep calling ReadNext after inspecting the error.
type MalformedRecordError struct {
	Line   string // the offending line, without its terminator
	Reason string
	Err    error // parse error from the failing field, if any
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed record %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed record %q: %s", e.Line, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
