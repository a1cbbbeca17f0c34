package csvlog

import (
	"encoding/base64"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// fieldCount is the number of columns in every record line.
const fieldCount = 7

// columns fixes the on-disk column order. It is the single source of truth
// for the format: both Reader and Writer derive their layout from it, so a
// format revision is a one-place change.
var columns = [fieldCount]string{
	"timestamp",
	"arbitration_id",
	"extended",
	"remote",
	"error",
	"dlc",
	"data",
}

var header = strings.Join(columns[:], ",")

// Header returns the column line written at the top of every new capture
// file. Its exact text is part of the wire contract.
func Header() string {
	return header
}

// lineTerminator returns the platform-native record terminator used on
// write. The Reader accepts any line separator convention.
func lineTerminator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// formatTimestamp renders ts in the shortest decimal form that parses back
// to the identical float64. Plain formatting with a fixed precision would
// round and break the round-trip guarantee.
func formatTimestamp(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}

func parseTimestamp(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// formatID renders the arbitration ID as lowercase hex with a 0x prefix.
func formatID(id uint32) string {
	return fmt.Sprintf("0x%x", id)
}

// parseID accepts base-16 text with or without a 0x prefix.
func parseID(s string) (uint32, error) {
	if len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
	}
	id, err := strconv.ParseUint(s, 16, 32)
	return uint32(id), err
}

func formatFlag(set bool) string {
	if set {
		return "1"
	}
	return "0"
}

// parseFlag treats the literal "1" as true and anything else as false. The
// lenient decode is deliberate: existing captures rely on it.
func parseFlag(s string) bool {
	return s == "1"
}

func formatDLC(dlc uint8) string {
	return strconv.FormatUint(uint64(dlc), 10)
}

func parseDLC(s string) (uint8, error) {
	dlc, err := strconv.ParseUint(s, 10, 8)
	return uint8(dlc), err
}

func formatData(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func parseData(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
