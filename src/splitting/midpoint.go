// Package splitting cuts tar archives at record boundaries and produces
// per-member content digests.
package splitting

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/header"
	"github.com/aurora-is-near/tarlite/src/tarlite"
)

const hashChunkSize = 32 * 1024

// Midpoint returns the first record boundary at or after half the
// archive's size. Cutting there keeps both halves header-aligned.
func Midpoint(filename string) (int64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, errors.Wrapf(errdefs.ErrOpen, "%s: %v", filename, err)
	}
	defer func() { _ = f.Close() }()
	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}
	stop := stat.Size() / 2
	r := tarlite.NewReader(f)
	for {
		h, err := r.ReadHeader()
		if err != nil {
			if errors.Is(err, errdefs.ErrNullRecord) {
				return 0, errors.Wrap(errdefs.ErrNotFound, "no record boundary past midpoint")
			}
			return 0, err
		}
		end := r.Offset() + header.Occupied(h.Size)
		if err := r.Next(); err != nil {
			return 0, err
		}
		if end >= stop {
			return end, nil
		}
	}
}

func splitfile(filename string, midpoint int64) error {
	destName := filename + ".part2"
	destF, err := os.Create(destName)
	if err != nil {
		return err
	}
	defer func() { _ = destF.Close() }()
	sourceF, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() { _ = sourceF.Close() }()
	if _, err := sourceF.Seek(midpoint, io.SeekStart); err != nil {
		return errors.Wrapf(errdefs.ErrSeek, "%s: %v", filename, err)
	}
	if _, err = io.Copy(destF, sourceF); err != nil {
		return err
	}
	return os.Truncate(filename, midpoint)
}

// SplitTarMiddle splits a tarfile roughly at its middle, preserving
// record boundaries so that each part remains a parsable stream. It
// truncates the input tarfile in place, and copies the remainder into a
// file called "<tarfile>.part2".
func SplitTarMiddle(tarfile string) error {
	mid, err := Midpoint(tarfile)
	if err != nil {
		return err
	}
	return splitfile(tarfile, mid)
}

// ReadSHA256 walks the archive and writes one "digest  name" line per
// regular member to w.
func ReadSHA256(tarfile string, w io.Writer) error {
	r, err := tarlite.Open(tarfile)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	buf := make([]byte, hashChunkSize)
	for {
		h, err := r.ReadHeader()
		if err != nil {
			if errors.Is(err, errdefs.ErrNullRecord) {
				return nil
			}
			return err
		}
		if h.Typeflag == header.TypeReg || h.Typeflag == header.TypeRegA {
			digest := sha256.New()
			for left := h.Size; left > 0; {
				n := int64(len(buf))
				if n > left {
					n = left
				}
				if _, err := r.ReadData(buf[:n]); err != nil {
					return err
				}
				_, _ = digest.Write(buf[:n])
				left -= n
			}
			if _, err := fmt.Fprintf(w, "%x  %s\n", digest.Sum(nil), h.Name); err != nil {
				return err
			}
		}
		if err := r.Next(); err != nil {
			return err
		}
	}
}
