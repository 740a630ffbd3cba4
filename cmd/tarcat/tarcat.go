package main

import (
	"fmt"
	"os"
	"path"

	"github.com/integrii/flaggy"

	"github.com/aurora-is-near/tarlite/src/tarlite"
)

const copyChunkSize = 32 * 1024

var (
	archive string
	member  string
)

func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
	os.Exit(1)
}

func main() {
	flaggy.SetName("tarcat")
	flaggy.SetDescription("Write one archive member to standard output")
	flaggy.AddPositionalValue(&archive, "archive", 1, true, "archive to read")
	flaggy.AddPositionalValue(&member, "member", 2, true, "member to extract")
	flaggy.Parse()

	r, err := tarlite.Open(archive)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = r.Close() }()
	h, err := r.Find(member)
	if err != nil {
		fatal(err)
	}
	buf := make([]byte, copyChunkSize)
	for left := h.Size; left > 0; {
		n := int64(len(buf))
		if n > left {
			n = left
		}
		if _, err := r.ReadData(buf[:n]); err != nil {
			fatal(err)
		}
		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			fatal(err)
		}
		left -= n
	}
}
