// Package logfile opens capture files for the codec, wrapping compressed
// files transparently based on their extension. Plain files pass through
// untouched; ".gz" and ".zst" files are (de)compressed on the fly.
package logfile

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// readCloser bundles a decoding reader with the close sequence for every
// layer underneath it.
type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error {
	return r.close()
}

type writeCloser struct {
	io.Writer
	close func() error
}

func (w *writeCloser) Close() error {
	return w.close()
}

// OpenInput opens path for reading, decompressing ".gz" and ".zst" files
// transparently. The returned closer releases the decoder and the file.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening gzip capture %s", path)
		}
		return &readCloser{
			Reader: zr,
			close: func() error {
				if err := zr.Close(); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			},
		}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening zstd capture %s", path)
		}
		return &readCloser{
			Reader: zr,
			close: func() error {
				zr.Close()
				return f.Close()
			},
		}, nil
	default:
		return f, nil
	}
}

// OpenOutput opens path for writing, compressing ".gz" and ".zst" files
// transparently. Compressed captures cannot be appended to: the encoder
// state of the existing file is unrecoverable, so appendMode with a
// compressed extension is an error.
func OpenOutput(path string, appendMode bool) (io.WriteCloser, error) {
	ext := filepath.Ext(path)
	compressed := ext == ".gz" || ext == ".zst"
	if compressed && appendMode {
		return nil, errors.Errorf("cannot append to compressed capture %s", path)
	}

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

	switch ext {
	case ".gz":
		zw := gzip.NewWriter(f)
		return &writeCloser{
			Writer: zw,
			close: func() error {
				if err := zw.Close(); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			},
		}, nil
	case ".zst":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening zstd capture %s", path)
		}
		return &writeCloser{
			Writer: zw,
			close: func() error {
				if err := zw.Close(); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			},
		}, nil
	default:
		return f, nil
	}
}
