package main

import (
	"fmt"
	"os"
	"path"

	"github.com/integrii/flaggy"

	"github.com/aurora-is-near/tarlite/src/tarindex"
	"github.com/aurora-is-near/tarlite/src/tarlite"
)

var (
	archive string
	output  string
	find    string
)

func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
	os.Exit(1)
}

func main() {
	flaggy.SetName("tarindex")
	flaggy.SetDescription("Build a member index for a tar archive, or query one")
	flaggy.String(&find, "f", "find", "look up a member in an existing index instead of building one")
	flaggy.AddPositionalValue(&archive, "archive", 1, true, "archive, or index file with --find")
	flaggy.AddPositionalValue(&output, "output", 2, false, "destination index, or - for stdout")
	flaggy.Parse()

	if find != "" {
		lookup()
		return
	}
	build()
}

func build() {
	out := os.Stdout
	if output != "" && output != "-" {
		of, err := os.Create(output)
		if err != nil {
			fatal(err)
		}
		defer func() { _ = of.Close() }()
		out = of
	}
	r, err := tarlite.Open(archive)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = r.Close() }()
	if err := tarindex.WriteIndex(r, out); err != nil {
		fatal(err)
	}
}

func lookup() {
	idx, err := os.Open(archive)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = idx.Close() }()
	entry, err := tarindex.Lookup(idx, find)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%s %d %d\n", entry.Name, entry.FirstByte, entry.LastByte)
}
