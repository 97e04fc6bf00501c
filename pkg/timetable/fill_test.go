package timetable

import (
	"strings"
	"testing"

	"github.com/neroden/timetable-kit/pkg/agency"
	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/schedule"
	"github.com/neroden/timetable-kit/pkg/spec"
)

// fillTestView holds train 99 (daily, NYP to WAS with a five minute dwell
// at PHL) and train 199 (weekends, PHL to RVR).
func fillTestView() *schedule.View {
	return &schedule.View{
		Agencies: []gtfs.Agency{
			{ID: "amtrak", Name: "Amtrak", Timezone: "America/New_York"},
		},
		Stops: []gtfs.Stop{
			{ID: "NYP", Name: "New York Penn", Timezone: "America/New_York"},
			{ID: "PHL", Name: "Philadelphia", Timezone: "America/New_York"},
			{ID: "WAS", Name: "Washington", Timezone: "America/New_York"},
			{ID: "RVR", Name: "Richmond", Timezone: "America/New_York"},
		},
		Routes: []gtfs.Route{
			{ID: "nec", LongName: "Northeast Regional", Type: 2, AgencyID: "amtrak"},
		},
		Trips: []gtfs.Trip{
			{ID: "trip-99", RouteID: "nec", ServiceID: "daily", ShortName: "99"},
			{ID: "trip-199", RouteID: "nec", ServiceID: "weekend", ShortName: "199"},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "trip-99", StopID: "NYP", StopSequence: 1, ArrivalTime: "08:00:00", DepartureTime: "08:00:00"},
			{TripID: "trip-99", StopID: "PHL", StopSequence: 2, ArrivalTime: "09:10:00", DepartureTime: "09:15:00"},
			{TripID: "trip-99", StopID: "WAS", StopSequence: 3, ArrivalTime: "10:30:00", DepartureTime: "10:30:00"},
			{TripID: "trip-199", StopID: "PHL", StopSequence: 1, ArrivalTime: "11:00:00", DepartureTime: "11:00:00"},
			{TripID: "trip-199", StopID: "WAS", StopSequence: 2, ArrivalTime: "12:45:00", DepartureTime: "12:45:00"},
			{TripID: "trip-199", StopID: "RVR", StopSequence: 3, ArrivalTime: "14:30:00", DepartureTime: "14:30:00"},
		},
		Calendars: []gtfs.Calendar{
			{ServiceID: "daily", Monday: 1, Tuesday: 1, Wednesday: 1, Thursday: 1, Friday: 1, Saturday: 1, Sunday: 1, Start: "20240101", End: "20241231"},
			{ServiceID: "weekend", Saturday: 1, Sunday: 1, Start: "20240101", End: "20241231"},
		},
	}
}

func stationRow(code string, cells ...string) spec.RowSpec {
	return spec.RowSpec{Kind: spec.RowStation, StationCode: code, Cells: cells}
}

func TestFill(t *testing.T) {
	view := fillTestView()
	ttSpec := &spec.Spec{
		Aux: &spec.Options{ReferenceDate: "20240302", DwellSecsCutoff: 300},
		Cols: []spec.ColSpec{
			{Kind: spec.ColStation, Header: "station"},
			{Kind: spec.ColTrains, Header: "99 / 199", Trains: []spec.TrainSpec{
				{TripShortName: "99"}, {TripShortName: "199"},
			}},
		},
		Rows: []spec.RowSpec{
			stationRow("NYP", "", ""),
			stationRow("PHL", "", ""),
			stationRow("WAS", "", ""),
			stationRow("RVR", "", ""),
		},
	}

	timetable, err := Fill(ttSpec, view, agency.NewGeneric(view))
	if err != nil {
		t.Fatalf("Fill() unexpected error: %v", err)
	}
	if timetable.RowCount() != 5 || timetable.ColCount() != 3 {
		t.Fatalf("grid is %dx%d, want 5x3", timetable.RowCount(), timetable.ColCount())
	}

	header := timetable.Cells[0][2]
	if header.Kind != CellHeader {
		t.Fatalf("header cell kind = %d", header.Kind)
	}
	if header.Text != "Train #\n99\nTrain #\n199" {
		t.Errorf("header text = %q", header.Text)
	}

	if got := timetable.Cells[1][1]; got.Kind != CellStationName || got.Text != "New York Penn" {
		t.Errorf("station cell = %+v", got)
	}

	times24h := false
	timeTexts := make([]string, 4)
	for y := 1; y <= 4; y++ {
		cell := timetable.Cells[y][2]
		text, err := CellText(cell, times24h)
		if err != nil {
			t.Fatalf("CellText() row %d unexpected error: %v", y, err)
		}
		timeTexts[y-1] = text
	}

	// NYP: first listed train wins; first stop, departure only.
	if timeTexts[0] != "  8:00A" {
		t.Errorf("NYP cell = %q, want \"  8:00A\"", timeTexts[0])
	}
	// PHL: the dwell equals the cutoff, which is enough for two rows.
	if timeTexts[1] != "  9:10A\n  9:15A" {
		t.Errorf("PHL cell = %q, want arrival and departure lines", timeTexts[1])
	}
	// WAS: train 99's last stop, arrival only.
	if !strings.HasPrefix(timeTexts[2], " 10:30A") {
		t.Errorf("WAS cell = %q, want arrival 10:30A", timeTexts[2])
	}
	// RVR: 99 doesn't stop there, so 199's time fills in.
	cell := timetable.Cells[4][2]
	if cell.Train != "199" {
		t.Errorf("RVR cell train = %q, want 199", cell.Train)
	}
	if !strings.Contains(timeTexts[3], "2:30P") {
		t.Errorf("RVR cell = %q, want 2:30P", timeTexts[3])
	}
}

func TestFillDegradedConnectingService(t *testing.T) {
	view := fillTestView()
	ttSpec := &spec.Spec{
		Aux: &spec.Options{ReferenceDate: "20240302", DwellSecsCutoff: 300},
		Cols: []spec.ColSpec{
			{Kind: spec.ColTrains, Header: "8993 noheader", Trains: []spec.TrainSpec{
				{TripShortName: "8993", NoHeader: true},
			}},
		},
		Rows: []spec.RowSpec{
			stationRow("NYP", ""),
		},
	}

	timetable, err := Fill(ttSpec, view, agency.NewGeneric(view))
	if err != nil {
		t.Fatalf("Fill() with a missing noheader train should degrade, got %v", err)
	}
	if got := timetable.Cells[1][1]; got.Kind != CellBlank {
		t.Errorf("degraded cell kind = %d, want blank", got.Kind)
	}
}

// Partner-operated services get a "Connecting Service #" header instead of
// a route-type prefix.
func TestFillConnectingServiceHeader(t *testing.T) {
	view := fillTestView()
	view.Trips = append(view.Trips, gtfs.Trip{ID: "trip-3752", RouteID: "nec", ServiceID: "daily", ShortName: "3752"})
	view.StopTimes = append(view.StopTimes,
		gtfs.StopTime{TripID: "trip-3752", StopID: "WAS", StopSequence: 1, ArrivalTime: "11:00:00", DepartureTime: "11:00:00"},
		gtfs.StopTime{TripID: "trip-3752", StopID: "RVR", StopSequence: 2, ArrivalTime: "12:40:00", DepartureTime: "12:40:00"},
	)

	ttSpec := &spec.Spec{
		Aux: &spec.Options{ReferenceDate: "20240302", DwellSecsCutoff: 300},
		Cols: []spec.ColSpec{
			{Kind: spec.ColTrains, Header: "99", Trains: []spec.TrainSpec{{TripShortName: "99"}}},
			{Kind: spec.ColTrains, Header: "3752", Trains: []spec.TrainSpec{{TripShortName: "3752"}}},
		},
		Rows: []spec.RowSpec{
			stationRow("WAS", "", ""),
		},
	}

	timetable, err := Fill(ttSpec, view, agency.NewAmtrak(view))
	if err != nil {
		t.Fatalf("Fill() unexpected error: %v", err)
	}
	if got := timetable.Cells[0][1].Text; got != "Train #\n99" {
		t.Errorf("own-train header = %q", got)
	}
	if got := timetable.Cells[0][2].Text; got != "Connecting Service #\n3752" {
		t.Errorf("connecting service header = %q", got)
	}
}

func TestFillMissingRequiredTrain(t *testing.T) {
	view := fillTestView()
	ttSpec := &spec.Spec{
		Aux: &spec.Options{ReferenceDate: "20240302", DwellSecsCutoff: 300},
		Cols: []spec.ColSpec{
			{Kind: spec.ColTrains, Header: "8993", Trains: []spec.TrainSpec{
				{TripShortName: "8993"},
			}},
		},
		Rows: []spec.RowSpec{
			stationRow("NYP", ""),
		},
	}

	if _, err := Fill(ttSpec, view, agency.NewGeneric(view)); err == nil {
		t.Error("Fill() with a missing required train expected error, got nil")
	}
}

func TestFillMissingReferenceDate(t *testing.T) {
	view := fillTestView()
	ttSpec := &spec.Spec{
		Aux:  &spec.Options{DwellSecsCutoff: 300},
		Cols: []spec.ColSpec{},
		Rows: []spec.RowSpec{},
	}
	if _, err := Fill(ttSpec, view, agency.NewGeneric(view)); err == nil {
		t.Error("Fill() without a reference date expected error, got nil")
	}
}

func TestFillRowKinds(t *testing.T) {
	view := fillTestView()
	ttSpec := &spec.Spec{
		Aux: &spec.Options{ReferenceDate: "20240302", DwellSecsCutoff: 300},
		Cols: []spec.ColSpec{
			{Kind: spec.ColStation, Header: "station"},
			{Kind: spec.ColTrains, Header: "99", Trains: []spec.TrainSpec{{TripShortName: "99"}}},
		},
		Rows: []spec.RowSpec{
			{Kind: spec.RowRouteName, Cells: []string{"", ""}},
			{Kind: spec.RowUpDown, Cells: []string{"", ""}},
			{Kind: spec.RowDays, Cells: []string{"", "NYP"}},
			{Kind: spec.RowOrigin, Cells: []string{"", ""}},
			stationRow("PHL", "", ""),
			{Kind: spec.RowDestination, Cells: []string{"", ""}},
		},
	}

	timetable, err := Fill(ttSpec, view, agency.NewGeneric(view))
	if err != nil {
		t.Fatalf("Fill() unexpected error: %v", err)
	}

	if got := timetable.Cells[1][2]; got.Kind != CellRouteName || got.Text != "Northeast Regional" {
		t.Errorf("route name cell = %+v", got)
	}
	if got := timetable.Cells[2][2]; got.Kind != CellUpDown || got.Text != "Read Down" {
		t.Errorf("updown cell = %+v", got)
	}
	if got := timetable.Cells[3][2]; got.Kind != CellDays || got.Text != "Daily" {
		t.Errorf("days cell = %+v", got)
	}
	// 99 originates at NYP, which is not on this page, so the origin row
	// announces it; its destination WAS isn't on the page either.
	if got := timetable.Cells[4][2]; got.Kind != CellOriginDest || got.Text != "From New York Penn" {
		t.Errorf("origin cell = %+v", got)
	}
	if got := timetable.Cells[6][2]; got.Kind != CellOriginDest || got.Text != "To Washington" {
		t.Errorf("destination cell = %+v", got)
	}
}

func TestFillCellCodes(t *testing.T) {
	view := fillTestView()
	ttSpec := &spec.Spec{
		Aux: &spec.Options{ReferenceDate: "20240302", DwellSecsCutoff: 300},
		Cols: []spec.ColSpec{
			{Kind: spec.ColTrains, Header: "99 / 199", Trains: []spec.TrainSpec{
				{TripShortName: "99"}, {TripShortName: "199"},
			}},
		},
		Rows: []spec.RowSpec{
			// Force 199's time at a station both trains serve.
			stationRow("WAS", "199"),
			// Style a blank with 99's color.
			stationRow("PHL", "99 blank"),
			// A whole-cell arrow.
			stationRow("NYP", "downarrow"),
			// A last directive suppresses the two-row dwell format.
			stationRow("PHL", "99 last"),
		},
	}

	timetable, err := Fill(ttSpec, view, agency.NewGeneric(view))
	if err != nil {
		t.Fatalf("Fill() unexpected error: %v", err)
	}

	was := timetable.Cells[1][1]
	if was.Kind != CellTime || was.Train != "199" {
		t.Fatalf("WAS override cell = %+v, want train 199 time", was)
	}
	if text, _ := CellText(was, false); !strings.Contains(text, "12:45P") {
		t.Errorf("WAS override = %q, want 12:45P", text)
	}

	phl := timetable.Cells[2][1]
	if phl.Kind != CellBlank || phl.Train != "99" {
		t.Errorf("blank code cell = %+v, want styled blank", phl)
	}

	nyp := timetable.Cells[3][1]
	if nyp.Kind != CellArrow {
		t.Errorf("arrow cell = %+v", nyp)
	}

	last := timetable.Cells[4][1]
	if last.Kind != CellTime || last.Time == nil {
		t.Fatalf("last directive cell = %+v", last)
	}
	if last.Time.TwoRow {
		t.Error("a last directive should collapse the two-row dwell format")
	}
	if !last.Time.IsLastStop {
		t.Error("last directive did not mark the cell as a final stop")
	}
}
