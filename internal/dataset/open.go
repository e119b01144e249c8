package dataset

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a dataset file, transparently decompressing .gz, .zst and .bz2
// files based on their extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, fmt.Errorf("csv: gzip %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{f.Close, zr.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, fmt.Errorf("csv: zstd %s: %w", path, err)
		}
		rc := zr.IOReadCloser()
		return &readCloser{Reader: rc, closers: []func() error{f.Close, rc.Close}}, nil
	case ".bz2":
		return &readCloser{Reader: bzip2.NewReader(f), closers: []func() error{f.Close}}, nil
	default:
		return f, nil
	}
}
