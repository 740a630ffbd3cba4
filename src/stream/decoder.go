// Package stream decodes a tar byte stream fed in arbitrary chunk sizes
// without seeking. Per-handle memory is one 512-byte scratch block:
// headers are accumulated there across feeds, payload bytes are copied
// straight out of the caller's chunk.
package stream

import (
	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/header"
)

type state int

const (
	stateHeader  state = iota // accumulating header bytes into scratch
	statePayload              // payload, then padding, flow to the caller
	stateEnd                  // zero record observed
)

// Decoder is a push-fed linear tar decoder. Feed it chunks with Feed and
// drive it with ReadHeader and ReadData. The chunk handed to Feed must
// stay unmodified until DataAvailable reports 0.
type Decoder struct {
	st      state
	scratch header.Block
	held    int // scratch bytes collected toward the next header

	hdr       *header.Header
	remaining int64 // payload bytes still owed for the current record
	pad       int64 // padding bytes still to drain

	win []byte // unconsumed tail of the caller's chunk
}

// NewDecoder returns a ready Decoder. The zero value is also usable.
func NewDecoder() *Decoder {
	return new(Decoder)
}

// Feed installs the next input chunk. The previous chunk must be fully
// consumed first; feeding on top of unconsumed input fails with
// errdefs.ErrOverflow. After the terminator, input is ignored.
func (d *Decoder) Feed(p []byte) error {
	if d.st == stateEnd {
		return nil
	}
	if len(d.win) != 0 {
		return errors.Wrapf(errdefs.ErrOverflow, "%d unconsumed input bytes", len(d.win))
	}
	d.win = p
	return nil
}

// ReadHeader advances the state machine as far as the buffered input
// allows and returns the current header. While a record's payload is
// pending it returns that record's header again. It returns (nil, nil)
// when more input is needed and errdefs.ErrNullRecord once the
// terminator has been seen.
func (d *Decoder) ReadHeader() (*header.Header, error) {
	if d.st == stateEnd {
		return nil, errdefs.ErrNullRecord
	}
	if d.st == statePayload {
		if d.remaining > 0 {
			return d.hdr, nil
		}
		d.drainPad()
		if d.pad > 0 {
			return nil, nil
		}
		d.st = stateHeader
		d.hdr = nil
	}
	n := copy(d.scratch[d.held:], d.win)
	d.held += n
	d.win = d.win[n:]
	if d.held < header.BlockSize {
		return nil, nil
	}
	d.held = 0
	h, err := header.Parse(&d.scratch)
	if err != nil {
		if errors.Is(err, errdefs.ErrNullRecord) {
			d.st = stateEnd
			d.win = nil
		}
		return nil, err
	}
	d.hdr = h
	d.remaining = h.Size
	d.pad = header.Padding(h.Size)
	d.st = statePayload
	return h, nil
}

// ReadData copies up to min(len(p), payload remaining, input available)
// payload bytes of the current record into p. Once the payload is
// complete the record's padding is drained silently, possibly across
// feeds, and the decoder moves on to the next header.
func (d *Decoder) ReadData(p []byte) (int, error) {
	if d.st != statePayload {
		return 0, errors.Wrap(errdefs.ErrOverflow, "no current record")
	}
	n := len(p)
	if int64(n) > d.remaining {
		n = int(d.remaining)
	}
	if n > len(d.win) {
		n = len(d.win)
	}
	copy(p, d.win[:n])
	d.win = d.win[n:]
	d.remaining -= int64(n)
	if d.remaining == 0 {
		d.drainPad()
		if d.pad == 0 {
			d.st = stateHeader
			d.hdr = nil
		}
	}
	return n, nil
}

func (d *Decoder) drainPad() {
	n := d.pad
	if n > int64(len(d.win)) {
		n = int64(len(d.win))
	}
	d.win = d.win[n:]
	d.pad -= n
}

// DataAvailable returns the number of unconsumed bytes of the current
// input chunk. The chunk may be reused once it reports 0.
func (d *Decoder) DataAvailable() int {
	return len(d.win)
}

// FileBytesRemaining returns the payload bytes still owed for the
// current record.
func (d *Decoder) FileBytesRemaining() int64 {
	return d.remaining
}
