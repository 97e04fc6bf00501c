// Package timetable fills a parsed spec with schedule data and assembles
// the resolved grid. The output is renderer agnostic: each cell carries
// structured display metadata, and the plaintext writer here is only one
// possible consumer.
package timetable

import (
	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/spec"
)

// CellKind discriminates the resolved cell variants.
type CellKind int

const (
	CellBlank CellKind = iota
	CellTime
	CellStationName
	CellServices
	CellAccess
	CellTimezone
	CellMile
	CellFreeText
	CellArrow
	CellRouteName
	CellDays
	CellUpDown
	CellOriginDest
	CellHeader
)

// TimeCell is the display payload of a resolved time cell. Times stay
// structured; turning them into strings is the renderer's job.
type TimeCell struct {
	TripID        string
	TripShortName string

	// Timepoint is the stop_time record the times come from. Empty
	// ArrivalTime/DepartureTime strings mean "no specific time" and render
	// as "---".
	Timepoint gtfs.StopTime
	// ZoneDiff is the whole-hour adjustment from agency time to the
	// stop's local time on the reference date.
	ZoneDiff int

	TwoRow      bool
	Reverse     bool
	UseArDp     bool
	NoRD        bool
	IsFirstStop bool
	IsLastStop  bool

	// Day strings for infrequent services, already offset by the day
	// rollover of the displayed times. Empty unless the column asks for
	// them via the "days" option.
	ArrivalDayString   string
	DepartureDayString string
	LongDaysBox        bool
	ShortDaysBox       bool

	UseBaggageIcon bool
	HasBaggage     bool
	UseBusIcon     bool
	IsBus          bool
}

// ResolvedCell is one write-once cell of the output grid.
type ResolvedCell struct {
	Kind CellKind
	// Text carries the payload of every textual variant: free text,
	// station names, route names, day strings, banners, headers, arrow
	// names (for CellArrow, the spec's arrow token).
	Text string
	// Train styles blank cells produced by "94 blank" codes and
	// single-train misses; renderers may color by it.
	Train string
	// Time is set for CellTime only.
	Time *TimeCell
}

// Timetable is the assembled output: the resolved cell matrix aligned with
// the classified spec. Cells[0] is the header row; Cells[y][0] mirrors the
// spec's code column and stays blank.
type Timetable struct {
	Spec  *spec.Spec
	Cells [][]ResolvedCell
}

// RowCount and ColCount report the grid dimensions including the header
// row and code column.
func (t *Timetable) RowCount() int { return len(t.Cells) }

func (t *Timetable) ColCount() int {
	if len(t.Cells) == 0 {
		return 0
	}
	return len(t.Cells[0])
}

// Document is the multi-page output of a spec list or a split spec: one
// grid per page, in order, sharing a title.
type Document struct {
	Title string
	Pages []*Timetable
}
