package tarlite

import (
	"io"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/backend"
	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/header"
)

var zeroBlock header.Block

// Writer emits conforming tar records to any io.Writer. After a header
// is written, exactly the declared number of payload bytes is expected;
// the writer pads the payload to the block boundary once the declared
// count is reached and refuses excess with errdefs.ErrOverflow.
type Writer struct {
	w         io.Writer
	written   int64 // running byte count, the alignment reference
	remaining int64 // payload bytes still expected for the open record
	buf       *backend.Buffer
}

// NewWriter returns a Writer emitting to w. For linear stream writing,
// w is the sink; backend.WriterFunc adapts a bare callback.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader encodes h and writes it. Records with a payload must be
// followed by h.Size bytes of Write before the next header.
func (w *Writer) WriteHeader(h *header.Header) error {
	var b header.Block
	if err := h.Encode(&b); err != nil {
		return err
	}
	if err := w.writeAll(b[:]); err != nil {
		return err
	}
	w.remaining = h.Size
	return nil
}

// WriteFileHeader writes a regular-file header with the given name and
// payload size.
func (w *Writer) WriteFileHeader(name string, size int64) error {
	return w.WriteHeader(&header.Header{Name: name, Size: size})
}

// WriteDirHeader writes a directory header. Directories carry no
// payload and no padding.
func (w *Writer) WriteDirHeader(name string) error {
	return w.WriteHeader(&header.Header{Name: name, Typeflag: header.TypeDir})
}

// Write emits payload bytes for the open record. When the declared
// count is reached the zero padding up to the next block boundary is
// emitted as well. Writing more than declared fails with
// errdefs.ErrOverflow.
func (w *Writer) Write(p []byte) (int, error) {
	if int64(len(p)) > w.remaining {
		return 0, errors.Wrapf(errdefs.ErrOverflow, "%d bytes past declared payload", int64(len(p))-w.remaining)
	}
	if err := w.writeAll(p); err != nil {
		return 0, err
	}
	w.remaining -= int64(len(p))
	if w.remaining == 0 {
		if err := w.pad(); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

func (w *Writer) pad() error {
	short := w.written % header.BlockSize
	if short == 0 {
		return nil
	}
	return w.writeAll(zeroBlock[:header.BlockSize-short])
}

// Finalize writes the two all-zero terminator records. An archive that
// is not finalized before Close is invalid. A payload underrun (fewer
// bytes written than declared) leaves the archive truncated; that is
// the caller's responsibility and does not fail Finalize.
func (w *Writer) Finalize() error {
	for i := 0; i < 2; i++ {
		if err := w.writeAll(zeroBlock[:]); err != nil {
			return err
		}
	}
	return nil
}

// Written returns the number of bytes emitted so far.
func (w *Writer) Written() int64 {
	return w.written
}

// Buffer returns the memory substrate of a handle opened with
// OpenMemoryWriter, or nil. After Finalize, Take on the buffer yields
// the archive bytes and transfers ownership to the caller.
func (w *Writer) Buffer() *backend.Buffer {
	return w.buf
}

// Close releases the substrate if it has a Close method. It does not
// write the terminator; call Finalize first.
func (w *Writer) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// writeAll writes all of p. A backend error propagates wrapped; a clean
// short write maps to errdefs.ErrWrite.
func (w *Writer) writeAll(p []byte) error {
	n, err := w.w.Write(p)
	w.written += int64(n)
	if err != nil {
		return errors.Wrap(err, "backend write")
	}
	if n < len(p) {
		return errors.Wrapf(errdefs.ErrWrite, "%d of %d bytes", n, len(p))
	}
	return nil
}
