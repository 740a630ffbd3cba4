// Package errdefs defines the error kinds shared by all tarlite packages.
// Operations return one of these sentinels, possibly wrapped with context;
// callers test for a kind with errors.Is.
package errdefs

import "errors"

var (
	// ErrFailure is returned when a backend reports an unspecified error.
	ErrFailure = errors.New("backend failure")
	// ErrOpen is returned when an open constructor cannot acquire its backend.
	ErrOpen = errors.New("open failed")
	// ErrRead is returned when a backend read yields fewer bytes than requested.
	ErrRead = errors.New("short read")
	// ErrWrite is returned when a backend write accepts fewer bytes than requested.
	ErrWrite = errors.New("short write")
	// ErrSeek is returned when a backend seek fails.
	ErrSeek = errors.New("seek failed")
	// ErrBadChecksum is returned when a header checksum does not validate.
	ErrBadChecksum = errors.New("header checksum mismatch")
	// ErrNullRecord marks an all-zero record. It is the normal end-of-archive
	// indicator, not a failure.
	ErrNullRecord = errors.New("null record")
	// ErrNotFound is returned when a lookup exhausts the archive without a match.
	ErrNotFound = errors.New("not found")
	// ErrOverflow is returned when a declared payload would overflow the
	// remaining space, or a write exceeds the declared payload size.
	ErrOverflow = errors.New("overflow")
	// ErrMemory is returned when a memory backend cannot allocate.
	ErrMemory = errors.New("allocation failed")
)

// Name maps err to the short ASCII name of the kind found in its chain.
// A nil error maps to "success"; errors outside the table map to "failure".
func Name(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrOpen):
		return "openfail"
	case errors.Is(err, ErrRead):
		return "readfail"
	case errors.Is(err, ErrWrite):
		return "writefail"
	case errors.Is(err, ErrSeek):
		return "seekfail"
	case errors.Is(err, ErrBadChecksum):
		return "badchksum"
	case errors.Is(err, ErrNullRecord):
		return "nullrecord"
	case errors.Is(err, ErrNotFound):
		return "notfound"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrMemory):
		return "memory"
	default:
		return "failure"
	}
}
