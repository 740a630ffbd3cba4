package main

import (
	"io"
	"os"
	"strings"

	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/tarlite/src/tarlite"
)

var output string

func main() {
	flaggy.SetName("tarpack")
	flaggy.SetDescription("Pack the named files into a tar archive")
	flaggy.AddPositionalValue(&output, "output", 1, true, "destination archive, or - for stdout")
	flaggy.Parse()

	log := logrus.WithField("archive", output)
	files := flaggy.TrailingArguments
	if len(files) == 0 {
		flaggy.ShowHelpAndExit("no input files")
	}
	var w *tarlite.Writer
	if output == "-" {
		w = tarlite.NewWriter(os.Stdout)
	} else {
		var err error
		if w, err = tarlite.Create(output); err != nil {
			log.WithError(err).Fatal("create archive")
		}
	}
	for _, name := range files {
		if err := addEntry(w, name); err != nil {
			log.WithError(err).WithField("file", name).Fatal("pack entry")
		}
	}
	if err := w.Finalize(); err != nil {
		log.WithError(err).Fatal("finalize archive")
	}
	if err := w.Close(); err != nil {
		log.WithError(err).Fatal("close archive")
	}
}

// addEntry packs one named file. A trailing slash marks a directory
// entry; directory trees are not walked.
func addEntry(w *tarlite.Writer, name string) error {
	if strings.HasSuffix(name, "/") {
		return w.WriteDirHeader(strings.TrimSuffix(name, "/"))
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	stat, err := f.Stat()
	if err != nil {
		return err
	}
	if err := w.WriteFileHeader(name, stat.Size()); err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
