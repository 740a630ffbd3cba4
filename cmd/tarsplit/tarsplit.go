package main

import (
	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/tarlite/src/splitting"
)

var archive string

func main() {
	flaggy.SetName("tarsplit")
	flaggy.SetDescription("Split a tar archive near its middle at a record boundary")
	flaggy.AddPositionalValue(&archive, "archive", 1, true, "archive to split in place")
	flaggy.Parse()

	log := logrus.WithField("archive", archive)
	if err := splitting.SplitTarMiddle(archive); err != nil {
		log.WithError(err).Fatal("split archive")
	}
	log.WithField("part2", archive+".part2").Info("archive split")
}
