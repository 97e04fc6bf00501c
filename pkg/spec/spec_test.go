package spec

import (
	"reflect"
	"testing"

	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/schedule"
)

func specTestView() *schedule.View {
	return &schedule.View{
		Stops: []gtfs.Stop{
			{ID: "NYP", Name: "New York Penn", Timezone: "America/New_York"},
			{ID: "PHL", Name: "Philadelphia", Timezone: "America/New_York"},
			{ID: "WAS", Name: "Washington", Timezone: "America/New_York"},
		},
		Routes: []gtfs.Route{
			{ID: "nec", LongName: "Northeast Regional", Type: 2},
		},
		Trips: []gtfs.Trip{
			{ID: "trip-99", RouteID: "nec", ServiceID: "daily", ShortName: "99"},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "trip-99", StopID: "NYP", StopSequence: 1, ArrivalTime: "08:00:00", DepartureTime: "08:00:00"},
			{TripID: "trip-99", StopID: "PHL", StopSequence: 2, ArrivalTime: "09:10:00", DepartureTime: "09:15:00"},
			{TripID: "trip-99", StopID: "WAS", StopSequence: 3, ArrivalTime: "10:30:00", DepartureTime: "10:30:00"},
		},
		Calendars: []gtfs.Calendar{
			{ServiceID: "daily", Monday: 1, Tuesday: 1, Wednesday: 1, Thursday: 1, Friday: 1, Saturday: 1, Sunday: 1, Start: "20240101", End: "20241231"},
		},
	}
}

func TestStripOmits(t *testing.T) {
	s := &TTSpec{
		Aux: &Options{},
		Grid: [][]string{
			{"", "99"},
			{"omit", "this is a comment"},
			{"NYP", ""},
			{"omit", "another comment"},
			{"WAS", ""},
		},
	}
	s.StripOmits()
	want := [][]string{
		{"", "99"},
		{"NYP", ""},
		{"WAS", ""},
	}
	if !reflect.DeepEqual(s.Grid, want) {
		t.Errorf("StripOmits() grid = %v, want %v", s.Grid, want)
	}
}

func TestExtractColumnOptions(t *testing.T) {
	s := &TTSpec{
		Aux: &Options{},
		Grid: [][]string{
			{"", "station", "99"},
			{"column-options", "", "reverse ardp"},
			{"NYP", "", ""},
		},
	}
	s.ExtractColumnOptions()

	wantOptions := [][]string{{}, {}, {"reverse", "ardp"}}
	if !reflect.DeepEqual(s.ColumnOptions, wantOptions) {
		t.Errorf("ColumnOptions = %v, want %v", s.ColumnOptions, wantOptions)
	}
	wantGrid := [][]string{
		{"", "station", "99"},
		{"NYP", "", ""},
	}
	if !reflect.DeepEqual(s.Grid, wantGrid) {
		t.Errorf("grid after extraction = %v, want %v", s.Grid, wantGrid)
	}
}

// A continuation page's marker cell carries a page-wide ardp token; the row
// must still extract and the token must reach every column.
func TestExtractColumnOptionsPageWide(t *testing.T) {
	s := &TTSpec{
		Aux: &Options{},
		Grid: [][]string{
			{"", "station", "99"},
			{"column-options ardp", "", "reverse"},
			{"NYP", "", ""},
		},
	}
	s.ExtractColumnOptions()

	wantOptions := [][]string{{}, {"ardp"}, {"reverse", "ardp"}}
	if !reflect.DeepEqual(s.ColumnOptions, wantOptions) {
		t.Errorf("ColumnOptions = %v, want %v", s.ColumnOptions, wantOptions)
	}
	wantGrid := [][]string{
		{"", "station", "99"},
		{"NYP", "", ""},
	}
	if !reflect.DeepEqual(s.Grid, wantGrid) {
		t.Errorf("grid after extraction = %v, want %v", s.Grid, wantGrid)
	}
}

func TestExtractColumnOptionsAbsentRow(t *testing.T) {
	s := &TTSpec{
		Aux: &Options{},
		Grid: [][]string{
			{"", "99"},
			{"NYP", ""},
		},
	}
	s.ExtractColumnOptions()
	if len(s.ColumnOptions) != 2 || len(s.ColumnOptions[1]) != 0 {
		t.Errorf("ColumnOptions = %v, want two empty lists", s.ColumnOptions)
	}
	if len(s.Grid) != 2 {
		t.Errorf("grid rows = %d, want 2 (nothing removed)", len(s.Grid))
	}
}

func TestAugmentFromKeyCell(t *testing.T) {
	build := func() *TTSpec {
		return &TTSpec{
			Aux: &Options{ReferenceDate: "20240301"},
			Grid: [][]string{
				{"stations of 99", "99"},
			},
		}
	}

	first := build()
	if err := first.AugmentFromKeyCell(specTestView()); err != nil {
		t.Fatalf("AugmentFromKeyCell() unexpected error: %v", err)
	}
	want := [][]string{
		{"", "99"},
		{"NYP", ""},
		{"PHL", ""},
		{"WAS", ""},
	}
	if !reflect.DeepEqual(first.Grid, want) {
		t.Fatalf("expanded grid = %v, want %v", first.Grid, want)
	}

	// Same input, same expansion.
	second := build()
	if err := second.AugmentFromKeyCell(specTestView()); err != nil {
		t.Fatalf("AugmentFromKeyCell() second run unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first.Grid, second.Grid) {
		t.Errorf("shorthand expansion is not deterministic: %v vs %v", first.Grid, second.Grid)
	}
}

func TestAugmentFromKeyCellErrors(t *testing.T) {
	s := &TTSpec{
		Aux:  &Options{ReferenceDate: "20240301"},
		Grid: [][]string{{"something else", "99"}},
	}
	if err := s.AugmentFromKeyCell(specTestView()); err == nil {
		t.Error("bad key cell expected error, got nil")
	}

	s = &TTSpec{
		Aux:  &Options{},
		Grid: [][]string{{"stations of 99", "99"}},
	}
	if err := s.AugmentFromKeyCell(specTestView()); err == nil {
		t.Error("missing reference date expected error, got nil")
	}
}

func TestSplit(t *testing.T) {
	s := &TTSpec{
		Aux: &Options{
			Heading:           "Silver Service",
			MaxColumnsPerPage: 2,
		},
		Grid: [][]string{
			{"", "station", "59", "174", "22", "91", "93"},
			{"column-options", "", "", "", "", "", ""},
			{"NYP", "", "a", "b", "c", "d", "e"},
		},
	}

	pages, err := s.Split()
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("Split() = %d pages, want 3", len(pages))
	}

	// Five regular columns over pages of two: the naive split would leave a
	// single orphan column on the last page, so the middle page gives one up.
	wantHeaders := [][]string{
		{"", "station", "59", "174"},
		{"", "station", "22"},
		{"", "station", "91", "93"},
	}
	for i, page := range pages {
		if !reflect.DeepEqual(page.Grid[0], wantHeaders[i]) {
			t.Errorf("page %d headers = %v, want %v", i+1, page.Grid[0], wantHeaders[i])
		}
		if page.Aux.MaxColumnsPerPage != 0 {
			t.Errorf("page %d still has MaxColumnsPerPage set", i+1)
		}
	}

	if pages[0].Aux.Heading != "Silver Service Page 1/3" {
		t.Errorf("page 1 heading = %q", pages[0].Aux.Heading)
	}
	if pages[2].Aux.Heading != "Silver Service Page 3/3" {
		t.Errorf("page 3 heading = %q", pages[2].Aux.Heading)
	}

	// Continuation pages force ardp into the code column's options.
	if pages[0].Grid[1][0] != "column-options" {
		t.Errorf("page 1 options marker = %q", pages[0].Grid[1][0])
	}
	for _, page := range pages[1:] {
		if page.Grid[1][0] != "column-options ardp" {
			t.Errorf("continuation page options marker = %q, want \"column-options ardp\"", page.Grid[1][0])
		}
	}

	// The source spec is untouched.
	if len(s.Grid[0]) != 7 {
		t.Error("Split() mutated the source grid")
	}
}

// A spec with no options row of its own gets one inserted on continuation
// pages; the first data row's station code must survive untouched.
func TestSplitInsertsOptionsRow(t *testing.T) {
	s := &TTSpec{
		Aux: &Options{MaxColumnsPerPage: 2},
		Grid: [][]string{
			{"", "station", "59", "174", "91", "93"},
			{"NYP", "", "a", "b", "c", "d"},
		},
	}

	pages, err := s.Split()
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("Split() = %d pages, want 2", len(pages))
	}

	if len(pages[0].Grid) != 2 || pages[0].Grid[1][0] != "NYP" {
		t.Errorf("page 1 grid = %v, want untouched data row", pages[0].Grid)
	}
	second := pages[1].Grid
	if len(second) != 3 {
		t.Fatalf("page 2 has %d rows, want inserted options row", len(second))
	}
	if second[1][0] != "column-options ardp" {
		t.Errorf("inserted options row marker = %q", second[1][0])
	}
	if second[2][0] != "NYP" {
		t.Errorf("page 2 data row code = %q, want NYP", second[2][0])
	}
}

func TestSplitDisabled(t *testing.T) {
	s := &TTSpec{
		Aux:  &Options{},
		Grid: [][]string{{"", "59"}},
	}
	pages, err := s.Split()
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(pages) != 1 || pages[0] != s {
		t.Errorf("Split() with no page limit should return the spec itself")
	}
}

func TestGetStationsAndTrainSpecsLists(t *testing.T) {
	s := &TTSpec{
		Aux: &Options{},
		Grid: [][]string{
			{"", "station", "59 / 174", "services"},
			{"route-name", "", "", ""},
			{"NYP", "", "", ""},
			{"WAS", "", "", ""},
		},
	}
	if got := s.GetStationsList(); !reflect.DeepEqual(got, []string{"NYP", "WAS"}) {
		t.Errorf("GetStationsList() = %v", got)
	}
	if got := s.GetTrainSpecsList(); !reflect.DeepEqual(got, []string{"59 / 174"}) {
		t.Errorf("GetTrainSpecsList() = %v", got)
	}
}
