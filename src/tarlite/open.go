package tarlite

import (
	"bytes"
	"os"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/backend"
	"github.com/aurora-is-near/tarlite/src/errdefs"
)

// Open opens the archive at path for reading, positioned at the origin.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errdefs.ErrOpen, "%s: %v", path, err)
	}
	return NewReader(f), nil
}

// OpenMemory returns a Reader over caller-owned bytes. The bytes are not
// copied; the caller must keep them live until Close.
func OpenMemory(data []byte) *Reader {
	return NewReader(bytes.NewReader(data))
}

// Create opens the archive at path for writing, truncating any existing
// file.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0640)
	if err != nil {
		return nil, errors.Wrapf(errdefs.ErrOpen, "%s: %v", path, err)
	}
	return NewWriter(f), nil
}

// OpenMemoryWriter returns a Writer over a growable memory buffer.
// After Finalize, Buffer().Take() yields the archive bytes and ownership.
func OpenMemoryWriter() *Writer {
	buf := new(backend.Buffer)
	w := NewWriter(buf)
	w.buf = buf
	return w
}
