package tarlite

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/backend"
	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/header"
)

func blobPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

// testArchive returns a two-member archive: a 600-byte blob and a short
// text file. 1536 + 1024 + 1024 terminator = 3584 bytes.
func testArchive(t *testing.T) []byte {
	t.Helper()
	w := OpenMemoryWriter()
	if err := w.WriteFileHeader("data/blob.bin", 600); err != nil {
		t.Fatalf("WriteFileHeader: %s", err)
	}
	if _, err := w.Write(blobPayload(600)); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := w.WriteFileHeader("hello/bye.txt", 13); err != nil {
		t.Fatalf("WriteFileHeader: %s", err)
	}
	if _, err := w.Write([]byte("Goodbye world")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %s", err)
	}
	return w.Buffer().Take()
}

func TestWriterArchiveLayout(t *testing.T) {
	data := testArchive(t)
	if len(data) != 3584 {
		t.Fatalf("archive length %d, want 3584", len(data))
	}
	var b header.Block
	copy(b[:], data[:header.BlockSize])
	h, err := header.Parse(&b)
	if err != nil {
		t.Fatalf("Parse first record: %s", err)
	}
	if h.Name != "data/blob.bin" || h.Size != 600 {
		t.Errorf("first record %q size %d", h.Name, h.Size)
	}
	terminator := data[len(data)-2*header.BlockSize:]
	for i, c := range terminator {
		if c != 0 {
			t.Fatalf("terminator byte %d is %#x", i, c)
		}
	}
}

func TestReaderIterate(t *testing.T) {
	r := OpenMemory(testArchive(t))
	defer func() { _ = r.Close() }()
	want := []struct {
		name string
		size int64
	}{
		{"data/blob.bin", 600},
		{"hello/bye.txt", 13},
	}
	for _, m := range want {
		h, err := r.ReadHeader()
		if err != nil {
			t.Fatalf("ReadHeader: %s", err)
		}
		if h.Name != m.name || h.Size != m.size {
			t.Errorf("record %q size %d, want %q size %d", h.Name, h.Size, m.name, m.size)
		}
		again, err := r.ReadHeader()
		if err != nil || again != h {
			t.Error("repeated ReadHeader returned a different record")
		}
		if err := r.Next(); err != nil {
			t.Fatalf("Next: %s", err)
		}
	}
	if _, err := r.ReadHeader(); !errors.Is(err, errdefs.ErrNullRecord) {
		t.Fatalf("expected null record, got %v", err)
	}
}

func TestFindAndRead(t *testing.T) {
	r := OpenMemory(testArchive(t))
	defer func() { _ = r.Close() }()
	h, err := r.Find("hello/bye.txt")
	if err != nil {
		t.Fatalf("Find: %s", err)
	}
	p := make([]byte, h.Size)
	if _, err := r.ReadData(p[:7]); err != nil {
		t.Fatalf("ReadData: %s", err)
	}
	if _, err := r.ReadData(p[7:]); err != nil {
		t.Fatalf("ReadData: %s", err)
	}
	if string(p) != "Goodbye world" {
		t.Errorf("payload %q", p)
	}
	if _, err := r.ReadData(p[:1]); !errors.Is(err, errdefs.ErrOverflow) {
		t.Fatalf("overread: %v", err)
	}
}

func TestFindMissing(t *testing.T) {
	r := OpenMemory(testArchive(t))
	defer func() { _ = r.Close() }()
	if _, err := r.Find("no/such/member"); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected notfound, got %v", err)
	}
}

func TestSeekTo(t *testing.T) {
	r := OpenMemory(testArchive(t))
	defer func() { _ = r.Close() }()
	if _, err := r.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader: %s", err)
	}
	if err := r.Next(); err != nil {
		t.Fatalf("Next: %s", err)
	}
	second := r.Offset()
	if err := r.SeekTo(second); err != nil {
		t.Fatalf("SeekTo: %s", err)
	}
	h, err := r.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %s", err)
	}
	if h.Name != "hello/bye.txt" {
		t.Errorf("record %q after SeekTo", h.Name)
	}
	if err := r.SeekTo(5); !errors.Is(err, errdefs.ErrSeek) {
		t.Fatalf("unaligned SeekTo: %v", err)
	}
}

func TestReadDataWithoutHeader(t *testing.T) {
	r := OpenMemory(testArchive(t))
	defer func() { _ = r.Close() }()
	if _, err := r.ReadData(make([]byte, 1)); !errors.Is(err, errdefs.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestWriteOverflow(t *testing.T) {
	w := OpenMemoryWriter()
	if err := w.WriteFileHeader("x", 4); err != nil {
		t.Fatalf("WriteFileHeader: %s", err)
	}
	if _, err := w.Write([]byte("12345")); !errors.Is(err, errdefs.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestFinalizeUnderrun(t *testing.T) {
	w := OpenMemoryWriter()
	if err := w.WriteFileHeader("x", 10); err != nil {
		t.Fatalf("WriteFileHeader: %s", err)
	}
	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize under underrun: %s", err)
	}
	if w.Written() != 512+3+1024 {
		t.Errorf("Written %d", w.Written())
	}

	// Reading the truncated result back must not fault: the declared
	// payload runs into the terminator zeros and the next record scan
	// lands on a zero block.
	r := OpenMemory(w.Buffer().Take())
	defer func() { _ = r.Close() }()
	h, err := r.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %s", err)
	}
	p := make([]byte, h.Size)
	if _, err := r.ReadData(p); err != nil {
		t.Fatalf("ReadData: %s", err)
	}
	if string(p[:3]) != "abc" {
		t.Errorf("payload prefix %q", p[:3])
	}
	if err := r.Next(); err != nil {
		t.Fatalf("Next: %s", err)
	}
	if _, err := r.ReadHeader(); !errors.Is(err, errdefs.ErrNullRecord) {
		t.Fatalf("after underrun member: %v", err)
	}
}

func TestWriterFuncSink(t *testing.T) {
	var sink []byte
	w := NewWriter(backend.WriterFunc(func(p []byte) (int, error) {
		sink = append(sink, p...)
		return len(p), nil
	}))
	if err := w.WriteFileHeader("s.txt", 3); err != nil {
		t.Fatalf("WriteFileHeader: %s", err)
	}
	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %s", err)
	}
	if len(sink) != 512+512+1024 {
		t.Fatalf("sink length %d", len(sink))
	}
	r := OpenMemory(sink)
	defer func() { _ = r.Close() }()
	h, err := r.Find("s.txt")
	if err != nil {
		t.Fatalf("Find: %s", err)
	}
	p := make([]byte, h.Size)
	if _, err := r.ReadData(p); err != nil {
		t.Fatalf("ReadData: %s", err)
	}
	if string(p) != "abc" {
		t.Errorf("payload %q", p)
	}
}

func TestFileRoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "round.tar")
	w, err := Create(name)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	if err := w.WriteDirHeader("d"); err != nil {
		t.Fatalf("WriteDirHeader: %s", err)
	}
	if err := w.WriteFileHeader("d/f.txt", 5); err != nil {
		t.Fatalf("WriteFileHeader: %s", err)
	}
	if _, err := w.Write([]byte("12345")); err != nil {
		t.Fatalf("Write: %s", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %s", err)
	}
	r, err := Open(name)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	defer func() { _ = r.Close() }()
	h, err := r.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %s", err)
	}
	if h.Typeflag != header.TypeDir || h.Name != "d" {
		t.Errorf("first record %q type %#x", h.Name, h.Typeflag)
	}
	h, err = r.Find("d/f.txt")
	if err != nil {
		t.Fatalf("Find: %s", err)
	}
	p := make([]byte, h.Size)
	if _, err := r.ReadData(p); err != nil {
		t.Fatalf("ReadData: %s", err)
	}
	if string(p) != "12345" {
		t.Errorf("payload %q", p)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.tar")); !errors.Is(err, errdefs.ErrOpen) {
		t.Fatalf("expected openfail, got %v", err)
	}
}

func TestTruncatedArchive(t *testing.T) {
	data := testArchive(t)
	r := OpenMemory(data[:len(data)-2*header.BlockSize-100])
	defer func() { _ = r.Close() }()
	for {
		if _, err := r.ReadHeader(); err != nil {
			if !errors.Is(err, errdefs.ErrRead) {
				t.Fatalf("expected readfail, got %v", err)
			}
			return
		}
		if err := r.Next(); err != nil {
			t.Fatalf("Next: %s", err)
		}
	}
}

func TestReaderOverFunc(t *testing.T) {
	data := testArchive(t)
	br := bytes.NewReader(data)
	r := NewReader(&backend.Func{ReadFunc: br.Read, SeekFunc: br.Seek})
	defer func() { _ = r.Close() }()
	h, err := r.Find("data/blob.bin")
	if err != nil {
		t.Fatalf("Find: %s", err)
	}
	p := make([]byte, h.Size)
	if _, err := r.ReadData(p); err != nil {
		t.Fatalf("ReadData: %s", err)
	}
	if !bytes.Equal(p, blobPayload(600)) {
		t.Error("payload mismatch over Func backend")
	}
}

func TestErrorNames(t *testing.T) {
	r := OpenMemory(testArchive(t))
	defer func() { _ = r.Close() }()
	_, err := r.Find("missing")
	if got := errdefs.Name(err); got != "notfound" {
		t.Errorf("Name %q", got)
	}
	if got := errdefs.Name(nil); got != "success" {
		t.Errorf("Name(nil) %q", got)
	}
}
