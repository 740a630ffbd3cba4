package tarindex

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/tarlite"
)

// BinaryEntry is the on-disk form of a ListEntry: the cumulative last
// byte, the entry type, and the NUL-padded member name.
type BinaryEntry [binaryEntrySize]byte

// BinaryEntry returns the binary form of the ListEntry. The stored size
// field carries entry.LastByte, which doubles as the cumulative offset
// for the next entry.
func (entry *ListEntry) BinaryEntry() *BinaryEntry {
	bin := new(BinaryEntry)
	binary.LittleEndian.PutUint64(bin[binarySizePos:binarySizeEnd], uint64(entry.LastByte))
	bin[binaryTypePos] = byte(entry.Type)
	copy(bin[binaryNamePos:binaryNameEnd], entry.Name)
	return bin
}

// ToListEntry reconstructs a ListEntry given the cumulative offset of
// the preceding entry.
func (bin *BinaryEntry) ToListEntry(offset int64) *ListEntry {
	last := int64(binary.LittleEndian.Uint64(bin[binarySizePos:binarySizeEnd]))
	name := string(bytes.TrimRight(bin[binaryNamePos:binaryNameEnd], "\x00"))
	return &ListEntry{
		Name:      name,
		Type:      EntryType(bin[binaryTypePos]),
		FirstByte: offset,
		LastByte:  last,
	}
}

// WriteIndex scans the archive and writes one binary entry per member
// to w, in archive order.
func WriteIndex(r *tarlite.Reader, w io.Writer) error {
	if err := r.Rewind(); err != nil {
		return err
	}
	for {
		first := r.Offset()
		h, err := r.ReadHeader()
		if err != nil {
			if errors.Is(err, errdefs.ErrNullRecord) {
				return nil
			}
			return err
		}
		if err := r.Next(); err != nil {
			return err
		}
		entry := &ListEntry{
			Size:      h.Size,
			Name:      h.Name,
			Type:      entryType(h.Typeflag),
			FirstByte: first,
			LastByte:  r.Offset(),
		}
		if _, err := w.Write(entry.BinaryEntry()[:]); err != nil {
			return errors.Wrap(err, "index write")
		}
	}
}

// Lookup scans the index for the first entry whose name equals name,
// byte-exact. On exhaustion it returns errdefs.ErrNotFound.
func Lookup(r io.Reader, name string) (*ListEntry, error) {
	var offset int64
	for {
		bin := new(BinaryEntry)
		if _, err := io.ReadFull(r, bin[:]); err != nil {
			if err == io.EOF {
				return nil, errors.Wrap(errdefs.ErrNotFound, name)
			}
			return nil, errors.Wrap(err, "index read")
		}
		entry := bin.ToListEntry(offset)
		offset = entry.LastByte
		if entry.Name == name {
			return entry, nil
		}
	}
}

// Seek positions the archive reader at the indexed member so that
// ReadHeader and ReadData work. It is the fast-path equivalent of
// (*tarlite.Reader).Find.
func Seek(r *tarlite.Reader, entry *ListEntry) error {
	return r.SeekTo(entry.FirstByte)
}
