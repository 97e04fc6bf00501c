package spec

import (
	"strings"

	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/util"
)

// TrainSpec is one train reference in a column header: a train number,
// optionally qualified by a weekday (for numbers which run different
// schedules on different days), optionally marked "noheader" (connecting
// services which shouldn't appear in the column header and degrade
// gracefully when missing).
type TrainSpec struct {
	TripShortName string
	Weekday       string
	NoHeader      bool
}

// Key is the dictionary form: "59" or "59 monday". NoHeader is dropped; it
// never matters for trip lookup.
func (ts TrainSpec) Key() string {
	if ts.Weekday == "" {
		return ts.TripShortName
	}
	return ts.TripShortName + " " + ts.Weekday
}

// ParseTrainSpec parses "59", "59 monday", "59 noheader", "59 monday
// noheader". Suffixes are removed right to left; whatever remains is the
// train number verbatim (train numbers may themselves contain spaces).
func ParseTrainSpec(text string) (TrainSpec, error) {
	ts := TrainSpec{}
	text = strings.TrimSpace(text)

	if rest, found := strings.CutSuffix(text, "noheader"); found {
		ts.NoHeader = true
		text = strings.TrimSpace(rest)
	}

	for _, day := range gtfs.GTFSDays {
		if rest, found := strings.CutSuffix(text, " "+day); found {
			ts.Weekday = day
			text = strings.TrimSpace(rest)
			break
		}
	}

	if text == "" {
		return ts, &ParseError{Message: "empty train spec"}
	}
	ts.TripShortName = text
	return ts, nil
}

// ParseTrainsSpec parses a whole column header like "59 / 174 monday / 22
// noheader" into its ordered train specs.
func ParseTrainsSpec(header string) ([]TrainSpec, error) {
	var specs []TrainSpec
	for _, part := range strings.Split(header, "/") {
		ts, err := ParseTrainSpec(part)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ts)
	}
	return specs, nil
}

// FlattenTrainSpecs returns the deduplicated keys ("59", "91 monday") of
// the train specs of all train columns, in first-appearance order.
func FlattenTrainSpecs(cols []ColSpec) []string {
	var keys []string
	for _, col := range cols {
		for _, ts := range col.Trains {
			keys = append(keys, ts.Key())
		}
	}
	return util.RemoveDuplicateStrings(keys, []string{})
}
