package schedule

import (
	"sort"

	"github.com/neroden/timetable-kit/pkg/gtfs"
)

// TripsAt returns the trip_ids calling at a stop, ordered by departure
// time. Run this on a view filtered to one date to get a usable list.
func (r *Resolver) TripsAt(stopID string) []string {
	var calls []gtfs.StopTime
	for _, stopTime := range r.view.StopTimes {
		if stopTime.StopID == stopID {
			calls = append(calls, stopTime)
		}
	}
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].DepartureTime < calls[j].DepartureTime
	})

	tripIDs := make([]string, len(calls))
	for i, call := range calls {
		tripIDs[i] = call.TripID
	}
	return tripIDs
}

// TripsBetween returns the trip_ids stopping at both stops in that order,
// sorted by departure time at the first stop.
func (r *Resolver) TripsBetween(stopOneID string, stopTwoID string) []string {
	sequenceAtTwo := map[string]int{}
	for _, stopTime := range r.view.StopTimes {
		if stopTime.StopID == stopTwoID {
			sequenceAtTwo[stopTime.TripID] = stopTime.StopSequence
		}
	}

	var tripIDs []string
	for _, tripID := range r.TripsAt(stopOneID) {
		sequenceTwo, stopsThere := sequenceAtTwo[tripID]
		if !stopsThere {
			continue
		}
		timepoint, err := r.Timepoint(tripID, stopOneID)
		if err != nil || timepoint == nil {
			continue
		}
		if timepoint.StopSequence < sequenceTwo {
			tripIDs = append(tripIDs, tripID)
		}
	}
	return tripIDs
}
