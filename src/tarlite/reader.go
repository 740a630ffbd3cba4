// Package tarlite reads and writes ustar/old-GNU style tar archives over
// seekable and stream substrates. It does no compression and keeps no
// global state; a handle is single-owner.
package tarlite

import (
	"io"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/header"
)

// Reader iterates the records of an archive over a seekable substrate.
// The client pattern is ReadHeader, optionally ReadData, then Next,
// repeated until ReadHeader returns errdefs.ErrNullRecord.
type Reader struct {
	rs io.ReadSeeker

	pos        int64 // archive offset of the current record
	lastHeader int64 // offset of the last header read
	lastSize   int64 // payload size of the last header read
	consumed   int64 // payload bytes handed out for the current record
	hdr        *header.Header
}

// NewReader returns a Reader over a caller-supplied substrate, for
// manually assembled backends. The cursor is taken to be at offset 0.
func NewReader(rs io.ReadSeeker) *Reader {
	return &Reader{rs: rs}
}

// ReadHeader decodes the record at the cursor without advancing past it.
// Calling it twice returns the same header. It returns
// errdefs.ErrNullRecord on the archive terminator.
func (r *Reader) ReadHeader() (*header.Header, error) {
	if r.hdr != nil {
		return r.hdr, nil
	}
	var b header.Block
	if _, err := r.rs.Seek(r.pos, io.SeekStart); err != nil {
		return nil, errors.Wrapf(errdefs.ErrSeek, "header at %d: %v", r.pos, err)
	}
	if err := readFull(r.rs, b[:]); err != nil {
		return nil, errors.Wrapf(err, "header at %d", r.pos)
	}
	h, err := header.Parse(&b)
	if err != nil {
		return nil, err
	}
	r.hdr = h
	r.lastHeader = r.pos
	r.lastSize = h.Size
	r.consumed = 0
	return h, nil
}

// ReadData reads len(p) payload bytes of the current record. ReadHeader
// must have been called first. Reading past the declared payload size is
// refused with errdefs.ErrOverflow; the reader never crosses into the
// next record.
func (r *Reader) ReadData(p []byte) (int, error) {
	if r.hdr == nil {
		return 0, errors.Wrap(errdefs.ErrOverflow, "no current record")
	}
	if r.consumed+int64(len(p)) > r.hdr.Size {
		return 0, errors.Wrapf(errdefs.ErrOverflow, "read past payload of %d bytes", r.hdr.Size)
	}
	off := r.lastHeader + header.BlockSize + r.consumed
	if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
		return 0, errors.Wrapf(errdefs.ErrSeek, "payload at %d: %v", off, err)
	}
	if err := readFull(r.rs, p); err != nil {
		return 0, errors.Wrapf(err, "payload at %d", off)
	}
	r.consumed += int64(len(p))
	return len(p), nil
}

// Next advances the cursor past the current record: one header block
// plus the payload rounded up to the block size.
func (r *Reader) Next() error {
	if r.hdr == nil {
		if _, err := r.ReadHeader(); err != nil {
			return err
		}
	}
	r.pos = r.lastHeader + header.Occupied(r.lastSize)
	r.hdr = nil
	return nil
}

// Rewind positions the cursor at the archive origin and clears the
// cached header state.
func (r *Reader) Rewind() error {
	if _, err := r.rs.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(errdefs.ErrSeek, "rewind: %v", err)
	}
	r.pos = 0
	r.lastHeader = 0
	r.lastSize = 0
	r.consumed = 0
	r.hdr = nil
	return nil
}

// Find rewinds and scans for the first record whose name equals name,
// byte-exact. On a match the cursor is positioned so ReadData works. On
// exhaustion it returns errdefs.ErrNotFound.
func (r *Reader) Find(name string) (*header.Header, error) {
	if err := r.Rewind(); err != nil {
		return nil, err
	}
	for {
		h, err := r.ReadHeader()
		if err != nil {
			if errors.Is(err, errdefs.ErrNullRecord) {
				return nil, errors.Wrap(errdefs.ErrNotFound, name)
			}
			return nil, err
		}
		if h.Name == name {
			return h, nil
		}
		if err := r.Next(); err != nil {
			return nil, err
		}
	}
}

// Offset returns the archive offset of the cursor. The value is a
// record boundary suitable for SeekTo.
func (r *Reader) Offset() int64 {
	return r.pos
}

// SeekTo repositions the cursor to a record boundary previously obtained
// from Offset and clears the cached header state.
func (r *Reader) SeekTo(off int64) error {
	if off < 0 || off%header.BlockSize != 0 {
		return errors.Wrapf(errdefs.ErrSeek, "offset %d is not a record boundary", off)
	}
	r.pos = off
	r.lastHeader = 0
	r.lastSize = 0
	r.consumed = 0
	r.hdr = nil
	return nil
}

// Close releases the substrate if it has a Close method. The memory view
// buffer stays owned by the caller.
func (r *Reader) Close() error {
	if c, ok := r.rs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// readFull reads exactly len(p) bytes. A backend error propagates
// wrapped; a clean short read maps to errdefs.ErrRead.
func readFull(r io.Reader, p []byte) error {
	n, err := io.ReadFull(r, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(errdefs.ErrRead, "%d of %d bytes", n, len(p))
	}
	if err != nil {
		return errors.Wrap(err, "backend read")
	}
	return nil
}
