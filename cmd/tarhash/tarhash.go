package main

import (
	"os"

	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/tarlite/src/splitting"
)

var (
	archive string
	output  string
)

func main() {
	flaggy.SetName("tarhash")
	flaggy.SetDescription("List the SHA-256 digest of every regular member of a tar archive")
	flaggy.AddPositionalValue(&archive, "archive", 1, true, "archive to hash")
	flaggy.AddPositionalValue(&output, "output", 2, false, "destination listing, or - for stdout")
	flaggy.Parse()

	log := logrus.WithField("archive", archive)
	out := os.Stdout
	if output != "" && output != "-" {
		of, err := os.Create(output)
		if err != nil {
			log.WithError(err).Fatal("create listing")
		}
		defer func() { _ = of.Close() }()
		out = of
	}
	if err := splitting.ReadSHA256(archive, out); err != nil {
		log.WithError(err).Fatal("hash archive")
	}
}
