// Package tarindex builds and reads sidecar indexes for tar archives.
// An index is a flat sequence of fixed-size binary entries, one per
// archive member, carrying cumulative byte offsets so a member can be
// located without scanning the archive itself.
package tarindex

import "github.com/aurora-is-near/tarlite/src/header"

const (
	binarySizeLen = 8
	binaryTypeLen = 1
	binaryNameLen = 256
	binarySizePos = 0
	binarySizeEnd = binarySizePos + binarySizeLen
	binaryTypePos = binarySizeEnd
	binaryTypeEnd = binaryTypePos + binaryTypeLen
	binaryNamePos = binaryTypeEnd
	binaryNameEnd = binaryNamePos + binaryNameLen

	binaryEntrySize int = binarySizeLen + binaryTypeLen + binaryNameLen
)

type EntryType byte

const (
	EntryTypeDirectory EntryType = 0x01
	EntryTypeFile      EntryType = 0x02
	EntryTypeLink      EntryType = 0x03
	EntryTypeOther     EntryType = 0x04
)

// entryType maps a tar type flag to the index entry type. Unknown flags
// index as EntryTypeOther; the codec does not interpret them.
func entryType(typeflag byte) EntryType {
	switch typeflag {
	case header.TypeReg, header.TypeRegA, header.TypeCont:
		return EntryTypeFile
	case header.TypeDir:
		return EntryTypeDirectory
	case header.TypeLink, header.TypeSymlink:
		return EntryTypeLink
	default:
		return EntryTypeOther
	}
}

// ListEntry describes one archive member in the index.
type ListEntry struct {
	Size      int64     // Payload size of the member.
	Name      string    // Member name as stored in the archive.
	Type      EntryType // Directory, link, regular file, or other.
	FirstByte int64     // Archive offset of the member's header record.
	LastByte  int64     // Archive offset one past the member's padding.
}
