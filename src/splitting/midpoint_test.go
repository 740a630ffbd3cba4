package splitting

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/header"
	"github.com/aurora-is-near/tarlite/src/tarlite"
)

func payload(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}

// writeSplitArchive lays out four members so the record boundary past the
// midpoint falls between the third and fourth: 1536 + 1024 + 2048 + 1024
// + 1024 terminator = 6656 bytes, midpoint boundary at 4608.
func writeSplitArchive(t *testing.T, path string) map[string][]byte {
	t.Helper()
	members := map[string][]byte{
		"a.bin": payload(700, 1),
		"b.txt": []byte("Hello, world!"),
		"c.bin": payload(1500, 2),
		"d.txt": []byte("tail!"),
	}
	w, err := tarlite.Create(path)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	for _, name := range []string{"a.bin", "b.txt", "c.bin", "d.txt"} {
		if err := w.WriteFileHeader(name, int64(len(members[name]))); err != nil {
			t.Fatalf("WriteFileHeader: %s", err)
		}
		if _, err := w.Write(members[name]); err != nil {
			t.Fatalf("Write: %s", err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	return members
}

func TestMidpoint(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "a.tar")
	writeSplitArchive(t, archive)
	mid, err := Midpoint(archive)
	if err != nil {
		t.Fatalf("Midpoint: %s", err)
	}
	if mid != 4608 {
		t.Errorf("midpoint %d, want 4608", mid)
	}
	if mid%header.BlockSize != 0 {
		t.Errorf("midpoint %d not a record boundary", mid)
	}
}

func TestSplitTarMiddle(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "a.tar")
	writeSplitArchive(t, archive)
	if err := SplitTarMiddle(archive); err != nil {
		t.Fatalf("SplitTarMiddle: %s", err)
	}
	part1, err := os.Stat(archive)
	if err != nil {
		t.Fatalf("Stat: %s", err)
	}
	part2, err := os.Stat(archive + ".part2")
	if err != nil {
		t.Fatalf("Stat part2: %s", err)
	}
	if part1.Size() != 4608 || part2.Size() != 2048 {
		t.Fatalf("sizes %d + %d", part1.Size(), part2.Size())
	}

	// The first part holds the leading members up to the cut, with no
	// terminator.
	r1, err := tarlite.Open(archive)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	defer func() { _ = r1.Close() }()
	var names []string
	for {
		h, err := r1.ReadHeader()
		if err != nil {
			if !errors.Is(err, errdefs.ErrRead) {
				t.Fatalf("ReadHeader: %s", err)
			}
			break
		}
		names = append(names, h.Name)
		if err := r1.Next(); err != nil {
			t.Fatalf("Next: %s", err)
		}
	}
	want := []string{"a.bin", "b.txt", "c.bin"}
	if len(names) != len(want) {
		t.Fatalf("part1 members %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("part1 member %d: %q", i, names[i])
		}
	}

	// The second part is itself a parsable stream ending in the
	// terminator.
	r2, err := tarlite.Open(archive + ".part2")
	if err != nil {
		t.Fatalf("Open part2: %s", err)
	}
	defer func() { _ = r2.Close() }()
	h, err := r2.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader part2: %s", err)
	}
	if h.Name != "d.txt" {
		t.Errorf("part2 first member %q", h.Name)
	}
	p := make([]byte, h.Size)
	if _, err := r2.ReadData(p); err != nil {
		t.Fatalf("ReadData: %s", err)
	}
	if string(p) != "tail!" {
		t.Errorf("part2 payload %q", p)
	}
	if err := r2.Next(); err != nil {
		t.Fatalf("Next: %s", err)
	}
	if _, err := r2.ReadHeader(); !errors.Is(err, errdefs.ErrNullRecord) {
		t.Fatalf("part2 end: %v", err)
	}
}

func TestMidpointNoBoundary(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "tiny.tar")
	w, err := tarlite.Create(archive)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	if err := w.WriteDirHeader("only"); err != nil {
		t.Fatalf("WriteDirHeader: %s", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	if _, err := Midpoint(archive); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected notfound, got %v", err)
	}
}

func TestReadSHA256(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "a.tar")
	members := writeSplitArchive(t, archive)
	var out bytes.Buffer
	if err := ReadSHA256(archive, &out); err != nil {
		t.Fatalf("ReadSHA256: %s", err)
	}
	var want bytes.Buffer
	for _, name := range []string{"a.bin", "b.txt", "c.bin", "d.txt"} {
		fmt.Fprintf(&want, "%x  %s\n", sha256.Sum256(members[name]), name)
	}
	if out.String() != want.String() {
		t.Errorf("digest listing:\n%s\nwant:\n%s", out.String(), want.String())
	}
}

func TestReadSHA256SkipsNonRegular(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "mixed.tar")
	w, err := tarlite.Create(archive)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	if err := w.WriteDirHeader("top"); err != nil {
		t.Fatalf("WriteDirHeader: %s", err)
	}
	if err := w.WriteHeader(&header.Header{Name: "top/l", Typeflag: header.TypeSymlink, Linkname: "f"}); err != nil {
		t.Fatalf("WriteHeader: %s", err)
	}
	if err := w.WriteFileHeader("top/f", 2); err != nil {
		t.Fatalf("WriteFileHeader: %s", err)
	}
	if _, err := w.Write([]byte("hi")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	var out bytes.Buffer
	if err := ReadSHA256(archive, &out); err != nil {
		t.Fatalf("ReadSHA256: %s", err)
	}
	want := fmt.Sprintf("%x  top/f\n", sha256.Sum256([]byte("hi")))
	if out.String() != want {
		t.Errorf("listing %q, want %q", out.String(), want)
	}
}
