// Package csvlog implements the canlog capture file format: a textual,
// line-oriented encoding of bus messages used to persist and replay traffic
// captured from a CAN bus.
//
// # File format
//
// A capture file starts with a fixed header line followed by one line per
// message, seven comma-separated columns each:
//
//	timestamp,arbitration_id,extended,remote,error,dlc,data
//	1483389946.197,0xdadada,1,0,0,6,WzQyLCA5XQ==
//
// Columns:
//   - timestamp: decimal float, seconds, full round-trip precision
//   - arbitration_id: lowercase hex with a 0x prefix (any hex accepted on read)
//   - extended, remote, error: "1" for true, anything else reads as false
//   - dlc: decimal data length code
//   - data: standard base64, padding kept, no line wrapping
//
// Lines are terminated with the platform's native separator on write; any
// separator convention is accepted on read. There is no quoting or escaping:
// the base64 alphabet keeps the payload column free of commas, and no other
// column can contain one.
//
// # Reading and writing
//
// Reader yields messages lazily, one per ReadNext call, and fires its stop
// hook exactly once on exhaustion so collaborators can release resources
// deterministically. Writer appends one line per Write call with no
// buffering between calls.
//
// Both come in two constructor flavors: Open* opens a path and owns the
// file handle, New* wraps an existing stream and never closes it.
//
// # Errors
//
// A stream with no header line at all is an empty capture, not an error. A
// content line that fails validation surfaces a *MalformedRecordError
// naming the line; the reader neither skips it silently nor aborts the
// caller's ability to read past it. Underlying I/O errors propagate
// unchanged.
package csvlog
