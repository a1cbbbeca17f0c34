// Package index maintains a persistent per-arbitration-ID summary of a
// capture file, so large captures can be queried repeatedly without
// rescanning. Summaries are stored in a pebble database keyed by the
// big-endian arbitration ID.
package index

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/tracebus/canlog/pkg/message"
)

// ErrNotIndexed is returned by Lookup for an arbitration ID the index has
// never seen.
var ErrNotIndexed = errors.New("arbitration id not indexed")

// Source is anything that yields messages one at a time, ending with io.EOF.
type Source interface {
	ReadNext() (*message.Message, error)
}

// Entry summarizes all messages of one arbitration ID.
type Entry struct {
	ArbitrationID  uint32  `json:"arbitration_id"`
	Count          uint64  `json:"count"`
	FirstTimestamp float64 `json:"first_timestamp"`
	LastTimestamp  float64 `json:"last_timestamp"`
	PayloadBytes   uint64  `json:"payload_bytes"`
}

// Value layout: count(8) first(8) last(8) payloadBytes(8), little-endian,
// timestamps as IEEE-754 bits.
const valueSize = 32

// Index is a pebble-backed capture summary.
type Index struct {
	db *pebble.DB
}

// Open opens (or creates) the index database at path.
func Open(path string) (*Index, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening index at %s", path)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Build scans src into the index, replacing any previous contents. It
// returns the number of messages scanned.
func (ix *Index) Build(src Source) (int, error) {
	agg := make(map[uint32]*Entry)

	n := 0
	for {
		msg, err := src.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, errors.Wrap(err, "scanning capture")
		}

		e, ok := agg[msg.ArbitrationID]
		if !ok {
			e = &Entry{ArbitrationID: msg.ArbitrationID, FirstTimestamp: msg.Timestamp}
			agg[msg.ArbitrationID] = e
		}
		e.Count++
		e.LastTimestamp = msg.Timestamp
		e.PayloadBytes += uint64(len(msg.Data))
		n++
	}

	batch := ix.db.NewBatch()
	defer batch.Close()

	// Keys are exactly 4 bytes; this range clears every prior entry.
	if err := batch.DeleteRange([]byte{0x00, 0x00, 0x00, 0x00}, []byte{0xff, 0xff, 0xff, 0xff, 0xff}, nil); err != nil {
		return n, errors.Wrap(err, "clearing index")
	}
	for id, e := range agg {
		if err := batch.Set(encodeKey(id), encodeValue(e), nil); err != nil {
			return n, errors.Wrapf(err, "indexing id 0x%x", id)
		}
	}

	if err := ix.db.Apply(batch, pebble.Sync); err != nil {
		return n, errors.Wrap(err, "committing index")
	}
	return n, nil
}

// Lookup returns the summary for one arbitration ID.
func (ix *Index) Lookup(id uint32) (*Entry, error) {
	value, closer, err := ix.db.Get(encodeKey(id))
	if err == pebble.ErrNotFound {
		return nil, ErrNotIndexed
	}
	if err != nil {
		return nil, errors.Wrapf(err, "looking up id 0x%x", id)
	}
	defer closer.Close()

	e, err := decodeValue(id, value)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Entries returns every summary in ascending arbitration-ID order.
func (ix *Index) Entries() ([]Entry, error) {
	iter, err := ix.db.NewIter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "iterating index")
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != 4 {
			return nil, errors.Errorf("unexpected index key length %d", len(key))
		}
		e, err := decodeValue(binary.BigEndian.Uint32(key), iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating index")
	}
	return entries, nil
}

func encodeKey(id uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, id)
	return key
}

func encodeValue(e *Entry) []byte {
	buf := make([]byte, valueSize)
	binary.LittleEndian.PutUint64(buf[0:], e.Count)
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(e.FirstTimestamp))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(e.LastTimestamp))
	binary.LittleEndian.PutUint64(buf[24:], e.PayloadBytes)
	return buf
}

func decodeValue(id uint32, value []byte) (*Entry, error) {
	if len(value) != valueSize {
		return nil, errors.Errorf("unexpected index value length %d for id 0x%x", len(value), id)
	}
	return &Entry{
		ArbitrationID:  id,
		Count:          binary.LittleEndian.Uint64(value[0:]),
		FirstTimestamp: math.Float64frombits(binary.LittleEndian.Uint64(value[8:])),
		LastTimestamp:  math.Float64frombits(binary.LittleEndian.Uint64(value[16:])),
		PayloadBytes:   binary.LittleEndian.Uint64(value[24:]),
	}, nil
}
