// Package header encodes and decodes the 512-byte tar record in the
// ustar/old-GNU family. It writes the classic v7 layout (no ustar magic,
// no prefix splitting of long names) and reads anything that carries a
// valid checksum.
package header

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/errdefs"
)

const (
	// BlockSize is the record unit of a tar archive.
	BlockSize = 512

	// NameSize and LinknameSize bound the two string fields, including
	// the terminating NUL.
	NameSize     = 100
	LinknameSize = 100

	// MaxSize is the largest payload representable in the 12-byte octal
	// size field (11 octal digits).
	MaxSize int64 = 1<<33 - 1
)

// Field offsets and widths within a record.
const (
	offName     = 0
	offMode     = 100
	offUID      = 108
	offGID      = 116
	offSize     = 124
	offMtime    = 136
	offChecksum = 148
	offTypeflag = 156
	offLinkname = 157

	lenMode     = 8
	lenUID      = 8
	lenGID      = 8
	lenSize     = 12
	lenMtime    = 12
	lenChecksum = 8
)

// Type flags. Unknown flags are passed through verbatim.
const (
	TypeReg     byte = '0'
	TypeRegA    byte = 0
	TypeLink    byte = '1'
	TypeSymlink byte = '2'
	TypeChar    byte = '3'
	TypeBlock   byte = '4'
	TypeDir     byte = '5'
	TypeFifo    byte = '6'
	TypeCont    byte = '7'
)

// Block is one raw 512-byte record.
type Block [BlockSize]byte

var zeroBlock Block

// IsZero reports whether the block is all zero, the end-of-archive marker.
func (b *Block) IsZero() bool {
	return bytes.Equal(b[:], zeroBlock[:])
}

// Header is the decoded form of a record.
type Header struct {
	Mode     int64
	UID      int64
	GID      int64
	Size     int64
	Mtime    int64
	Typeflag byte
	Name     string
	Linkname string
}

// Padding returns the number of zero bytes following a payload of the
// given size up to the next record boundary.
func Padding(size int64) int64 {
	if size%BlockSize == 0 {
		return 0
	}
	return BlockSize - size%BlockSize
}

// Occupied returns the number of archive bytes a record with the given
// payload size occupies: one header block plus the padded payload.
func Occupied(size int64) int64 {
	return BlockSize + size + Padding(size)
}

// checksums returns the unsigned and signed byte sums of b with the
// checksum field counted as eight ASCII spaces. Both polarities exist in
// the wild; encoders here always write the unsigned sum.
func checksums(b *Block) (unsigned, signed int64) {
	for i, c := range b {
		if i >= offChecksum && i < offChecksum+lenChecksum {
			c = ' '
		}
		unsigned += int64(c)
		signed += int64(int8(c))
	}
	return unsigned, signed
}

// Parse decodes a record. It returns errdefs.ErrNullRecord for an
// all-zero block and errdefs.ErrBadChecksum when the checksum field does
// not validate against either checksum polarity.
func Parse(b *Block) (*Header, error) {
	if b.IsZero() {
		return nil, errdefs.ErrNullRecord
	}
	want, err := parseOctal(b[offChecksum : offChecksum+lenChecksum])
	if err != nil {
		return nil, errors.Wrap(errdefs.ErrBadChecksum, "checksum field unparsable")
	}
	unsigned, signed := checksums(b)
	if want != unsigned && want != signed {
		return nil, errors.Wrapf(errdefs.ErrBadChecksum, "field %#o, computed %#o", want, unsigned)
	}
	h := &Header{
		Typeflag: b[offTypeflag],
		Name:     cString(b[offName : offName+NameSize]),
		Linkname: cString(b[offLinkname : offLinkname+LinknameSize]),
	}
	fields := []struct {
		name string
		dst  *int64
		src  []byte
	}{
		{"mode", &h.Mode, b[offMode : offMode+lenMode]},
		{"uid", &h.UID, b[offUID : offUID+lenUID]},
		{"gid", &h.GID, b[offGID : offGID+lenGID]},
		{"size", &h.Size, b[offSize : offSize+lenSize]},
		{"mtime", &h.Mtime, b[offMtime : offMtime+lenMtime]},
	}
	for _, f := range fields {
		if *f.dst, err = parseOctal(f.src); err != nil {
			return nil, errors.Wrapf(errdefs.ErrFailure, "%s field: %v", f.name, err)
		}
	}
	return h, nil
}

// Encode writes h into b. Mode defaults to 0664 and the type flag to
// regular file when left zero. Names longer than 99 bytes and sizes that
// do not fit 11 octal digits are rejected with errdefs.ErrOverflow.
func (h *Header) Encode(b *Block) error {
	if len(h.Name) > NameSize-1 {
		return errors.Wrapf(errdefs.ErrOverflow, "name %d bytes", len(h.Name))
	}
	if len(h.Linkname) > LinknameSize-1 {
		return errors.Wrapf(errdefs.ErrOverflow, "linkname %d bytes", len(h.Linkname))
	}
	if h.Size < 0 || h.Size > MaxSize {
		return errors.Wrapf(errdefs.ErrOverflow, "size %d", h.Size)
	}
	if h.Mode < 0 || h.UID < 0 || h.GID < 0 || h.Mtime < 0 {
		return errors.Wrap(errdefs.ErrOverflow, "negative numeric field")
	}
	mode := h.Mode
	if mode == 0 {
		mode = 0664
	}
	typeflag := h.Typeflag
	if typeflag == 0 {
		typeflag = TypeReg
	}
	*b = zeroBlock
	copy(b[offName:offName+NameSize], h.Name)
	formatOctal(b[offMode:offMode+lenMode], mode)
	formatOctal(b[offUID:offUID+lenUID], h.UID)
	formatOctal(b[offGID:offGID+lenGID], h.GID)
	formatOctal(b[offSize:offSize+lenSize], h.Size)
	formatOctal(b[offMtime:offMtime+lenMtime], h.Mtime)
	b[offTypeflag] = typeflag
	copy(b[offLinkname:offLinkname+LinknameSize], h.Linkname)
	// Checksum over the record with the field seeded to spaces, then
	// six octal digits, NUL, space.
	copy(b[offChecksum:offChecksum+lenChecksum], "        ")
	sum, _ := checksums(b)
	formatChecksum(b[offChecksum:offChecksum+lenChecksum], sum)
	return nil
}

func cString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
