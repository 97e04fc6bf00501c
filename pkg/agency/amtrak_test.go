package agency

import (
	"testing"

	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/schedule"
)

func amtrakTestView() *schedule.View {
	return &schedule.View{
		Agencies: []gtfs.Agency{
			{ID: "amtrak", Name: "Amtrak", Timezone: "America/New_York"},
			{ID: "thruway-op", Name: "Valley Retriever", Timezone: "America/Los_Angeles"},
		},
		Routes: []gtfs.Route{
			{ID: "cs", LongName: "Amtrak Coast Starlight", Type: 2, AgencyID: "amtrak"},
			{ID: "thruway", LongName: "Amtrak Thruway Connecting Service", Type: 3, AgencyID: "thruway-op"},
		},
	}
}

func TestTrainHasCheckedBaggage(t *testing.T) {
	amtrak := NewAmtrak(amtrakTestView())

	testCases := []struct {
		tsn  string
		want bool
	}{
		{tsn: "11", want: true},   // Coast Starlight, sleeper train
		{tsn: "79", want: true},   // Carolinian, day train with baggage car
		{tsn: "448", want: false}, // Boston section, sleepers but no baggage
		{tsn: "449", want: false},
		{tsn: "48", want: true}, // New York section does carry it
		{tsn: "562", want: true},  // Pacific Surfliner range
		{tsn: "705", want: true},  // San Joaquins range
		{tsn: "330", want: true},  // Hiawatha range
		{tsn: "174", want: false}, // Northeast Regional
		{tsn: "8993", want: false},
		{tsn: "V1", want: false}, // non-numeric
	}

	for _, testCase := range testCases {
		if got := amtrak.TrainHasCheckedBaggage(testCase.tsn); got != testCase.want {
			t.Errorf("TrainHasCheckedBaggage(%q) = %v, want %v", testCase.tsn, got, testCase.want)
		}
	}
}

func TestIsConnectingService(t *testing.T) {
	amtrak := NewAmtrak(amtrakTestView())

	testCases := []struct {
		tsn  string
		want bool
	}{
		{tsn: "99", want: false},
		{tsn: "2999", want: false},
		{tsn: "3000", want: true},
		{tsn: "8993", want: true},
		{tsn: "V1", want: true},
	}

	for _, testCase := range testCases {
		if got := amtrak.IsConnectingService(testCase.tsn); got != testCase.want {
			t.Errorf("IsConnectingService(%q) = %v, want %v", testCase.tsn, got, testCase.want)
		}
	}
}

func TestAmtrakRouteName(t *testing.T) {
	view := amtrakTestView()
	amtrak := NewAmtrak(view)

	name, err := amtrak.RouteName(view, "cs")
	if err != nil {
		t.Fatalf("RouteName(cs) unexpected error: %v", err)
	}
	if name != "Coast Starlight" {
		t.Errorf("RouteName(cs) = %q, want Coast Starlight", name)
	}

	// Thruway buses get the operating agency's name instead of the
	// meaningless generic route name.
	name, err = amtrak.RouteName(view, "thruway")
	if err != nil {
		t.Fatalf("RouteName(thruway) unexpected error: %v", err)
	}
	if name != "Valley Retriever" {
		t.Errorf("RouteName(thruway) = %q, want Valley Retriever", name)
	}
}

func TestGenericStationName(t *testing.T) {
	view := &schedule.View{
		Stops: []gtfs.Stop{{ID: "NYP", Name: "New York Penn"}},
	}
	generic := NewGeneric(view)
	if got := generic.StationName("NYP"); got != "New York Penn" {
		t.Errorf("StationName(NYP) = %q", got)
	}
	if got := generic.StationName("XXX"); got != "XXX" {
		t.Errorf("StationName of an unknown code = %q, want the code itself", got)
	}
}
