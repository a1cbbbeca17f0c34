// Package message defines the bus message entity shared by the canlog
// readers, writers and tooling.
package message

import (
	"bytes"
	"fmt"
	"strings"
)

// Message is a single frame captured from (or destined for) the bus.
//
// Timestamp is seconds since the Unix epoch, with sub-second resolution.
// ArbitrationID is the frame identifier; 11 bits for standard frames,
// 29 bits when IsExtendedID is set.
type Message struct {
	Timestamp     float64 `json:"timestamp"`
	ArbitrationID uint32  `json:"arbitration_id"`
	IsExtendedID  bool    `json:"is_extended_id"`
	IsRemoteFrame bool    `json:"is_remote_frame"`
	IsErrorFrame  bool    `json:"is_error_frame"`
	DLC           uint8   `json:"dlc"`
	Data          []byte  `json:"data"`
}

// Equal reports whether m and other carry identical field values.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Timestamp == other.Timestamp &&
		m.ArbitrationID == other.ArbitrationID &&
		m.IsExtendedID == other.IsExtendedID &&
		m.IsRemoteFrame == other.IsRemoteFrame &&
		m.IsErrorFrame == other.IsErrorFrame &&
		m.DLC == other.DLC &&
		bytes.Equal(m.Data, other.Data)
}

// String renders the message in a fixed-width human form for log output.
func (m *Message) String() string {
	var flags []string
	if m.IsExtendedID {
		flags = append(flags, "X")
	}
	if m.IsRemoteFrame {
		flags = append(flags, "R")
	}
	if m.IsErrorFrame {
		flags = append(flags, "E")
	}
	flagField := strings.Join(flags, "")
	if flagField == "" {
		flagField = "-"
	}

	var data strings.Builder
	for i, b := range m.Data {
		if i > 0 {
			data.WriteByte(' ')
		}
		fmt.Fprintf(&data, "%02x", b)
	}

	return fmt.Sprintf("%17.6f  %08x  %-3s  [%d]  %s",
		m.Timestamp, m.ArbitrationID, flagField, m.DLC, data.String())
}
