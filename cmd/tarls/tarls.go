package main

import (
	"fmt"
	"os"
	"path"

	"github.com/fatih/color"
	"github.com/integrii/flaggy"

	"github.com/aurora-is-near/tarlite/src/tarindex"
)

var (
	archive string
	long    bool

	dirColor  = color.New(color.FgBlue, color.Bold)
	linkColor = color.New(color.FgCyan)
)

func main() {
	flaggy.SetName("tarls")
	flaggy.SetDescription("List the members of a tar archive")
	flaggy.Bool(&long, "l", "long", "include sizes and archive offsets")
	flaggy.AddPositionalValue(&archive, "archive", 1, true, "archive to list")
	flaggy.Parse()

	entryFunc := func(e *tarindex.ListEntry) error {
		if long {
			fmt.Printf("%10d  %10d  ", e.Size, e.FirstByte)
		}
		switch e.Type {
		case tarindex.EntryTypeDirectory:
			_, _ = dirColor.Println(e.Name + "/")
		case tarindex.EntryTypeLink:
			_, _ = linkColor.Println(e.Name)
		default:
			fmt.Println(e.Name)
		}
		return nil
	}
	if err := tarindex.ListToFunc(archive, entryFunc); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
}
