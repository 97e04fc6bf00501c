// Package schedule provides an in-memory relational view over GTFS tables
// with non-mutating filter operations, plus trip resolution by train number.
//
// Known limitation: calendar_dates.txt exceptions are loaded but never
// consulted when deciding whether a trip is active. Printed timetables want
// the regular pattern, not single-day exceptions.
package schedule

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/util"
)

// View is a snapshot of GTFS tables restricted to a working subset. Every
// filter returns a new View; an existing View is never mutated, so a View
// can be shared freely once built.
type View struct {
	Agencies      []gtfs.Agency
	Stops         []gtfs.Stop
	Routes        []gtfs.Route
	Trips         []gtfs.Trip
	StopTimes     []gtfs.StopTime
	Calendars     []gtfs.Calendar
	CalendarDates []gtfs.CalendarDate
}

// NewView snapshots a loaded Schedule into a filterable View.
func NewView(schedule *gtfs.Schedule) *View {
	view := &View{}
	if err := copier.Copy(view, schedule); err != nil {
		log.Error().Err(err).Msg("Failed to copy schedule tables")
	}
	return view
}

// copy clones every table into fresh backing arrays. The clones matter:
// filters narrow the copy in place, and a shared backing array would let
// that rewrite the parent view's rows.
func (v *View) copy() *View {
	return &View{
		Agencies:      slices.Clone(v.Agencies),
		Stops:         slices.Clone(v.Stops),
		Routes:        slices.Clone(v.Routes),
		Trips:         slices.Clone(v.Trips),
		StopTimes:     slices.Clone(v.StopTimes),
		Calendars:     slices.Clone(v.Calendars),
		CalendarDates: slices.Clone(v.CalendarDates),
	}
}

func (v *View) serviceIDSet() map[string]bool {
	set := map[string]bool{}
	for _, calendar := range v.Calendars {
		set[calendar.ServiceID] = true
	}
	return set
}

func (v *View) tripIDSet() map[string]bool {
	set := map[string]bool{}
	for _, trip := range v.Trips {
		set[trip.ID] = true
	}
	return set
}

// narrowTripsToCalendar drops trips whose service_id is no longer in the
// calendar, then drops stop_times whose trip_id is no longer in trips.
func (v *View) narrowTripsToCalendar() {
	serviceIDs := v.serviceIDSet()
	util.InPlaceFilter(&v.Trips, func(t gtfs.Trip) bool {
		return serviceIDs[t.ServiceID]
	})
	v.narrowStopTimesToTrips()
}

func (v *View) narrowStopTimesToTrips() {
	tripIDs := v.tripIDSet()
	util.InPlaceFilter(&v.StopTimes, func(st gtfs.StopTime) bool {
		return tripIDs[st.TripID]
	})
}

func (v *View) narrowCalendarToTrips() {
	serviceIDs := map[string]bool{}
	for _, trip := range v.Trips {
		serviceIDs[trip.ServiceID] = true
	}
	util.InPlaceFilter(&v.Calendars, func(c gtfs.Calendar) bool {
		return serviceIDs[c.ServiceID]
	})
}

// FilterByDates keeps only calendars overlapping [first, last], both in
// GTFS YYYYMMDD form, then narrows trips and stop_times to match. Lexical
// comparison is correct for GTFS date strings.
func (v *View) FilterByDates(first string, last string) *View {
	out := v.copy()
	util.InPlaceFilter(&out.Calendars, func(c gtfs.Calendar) bool {
		return c.End >= first && c.Start <= last
	})
	out.narrowTripsToCalendar()
	return out
}

// FilterByDayOfWeek keeps only calendars running on the given GTFS day name
// ("monday" through "sunday"), then narrows trips and stop_times.
func (v *View) FilterByDayOfWeek(day string) (*View, error) {
	return v.FilterByDaysOfWeek([]string{day})
}

// FilterByDaysOfWeek keeps calendars running on at least one of the given
// GTFS day names.
func (v *View) FilterByDaysOfWeek(days []string) (*View, error) {
	for _, day := range days {
		if !validGTFSDay(day) {
			return nil, &InputError{Message: fmt.Sprintf("expected GTFS day name, got %q", day)}
		}
	}

	out := v.copy()
	util.InPlaceFilter(&out.Calendars, func(c gtfs.Calendar) bool {
		for _, day := range days {
			if c.RunsOn(day) {
				return true
			}
		}
		return false
	})
	out.narrowTripsToCalendar()
	return out, nil
}

// FilterByRouteIDs keeps only the given routes and their trips, narrowing
// calendar and stop_times to match.
func (v *View) FilterByRouteIDs(routeIDs []string) *View {
	wanted := stringSet(routeIDs)
	out := v.copy()
	util.InPlaceFilter(&out.Routes, func(r gtfs.Route) bool {
		return wanted[r.ID]
	})
	util.InPlaceFilter(&out.Trips, func(t gtfs.Trip) bool {
		return wanted[t.RouteID]
	})
	out.narrowCalendarToTrips()
	out.narrowStopTimesToTrips()
	return out
}

// FilterByServiceIDs keeps only the given service_ids in calendar and trips.
func (v *View) FilterByServiceIDs(serviceIDs []string) *View {
	wanted := stringSet(serviceIDs)
	out := v.copy()
	util.InPlaceFilter(&out.Calendars, func(c gtfs.Calendar) bool {
		return wanted[c.ServiceID]
	})
	out.narrowTripsToCalendar()
	return out
}

// FilterBadServiceIDs removes the given known-bad service_ids from calendar
// and trips.
func (v *View) FilterBadServiceIDs(badServiceIDs []string) *View {
	bad := stringSet(badServiceIDs)
	out := v.copy()
	util.InPlaceFilter(&out.Calendars, func(c gtfs.Calendar) bool {
		return !bad[c.ServiceID]
	})
	util.InPlaceFilter(&out.Trips, func(t gtfs.Trip) bool {
		return !bad[t.ServiceID]
	})
	out.narrowStopTimesToTrips()
	return out
}

// FilterRemoveOneDayCalendars removes service_ids effective for a single
// day. Amtrak publishes throwaway one-day calendars which would otherwise
// masquerade as legitimate trips; this is a heuristic, not universal truth.
func (v *View) FilterRemoveOneDayCalendars() *View {
	out := v.copy()
	util.InPlaceFilter(&out.Calendars, func(c gtfs.Calendar) bool {
		return c.Start != c.End
	})
	out.narrowTripsToCalendar()
	return out
}

// FilterFindOneDayCalendars keeps *only* single-day service_ids. Useful for
// examining individual dates of odd service.
func (v *View) FilterFindOneDayCalendars() *View {
	out := v.copy()
	util.InPlaceFilter(&out.Calendars, func(c gtfs.Calendar) bool {
		return c.Start == c.End
	})
	out.narrowTripsToCalendar()
	return out
}

// FilterByTripShortNames keeps only trips with the given train numbers,
// narrowing stop_times and calendar to match.
func (v *View) FilterByTripShortNames(names []string) *View {
	wanted := stringSet(names)
	out := v.copy()
	util.InPlaceFilter(&out.Trips, func(t gtfs.Trip) bool {
		return wanted[t.ShortName]
	})
	out.narrowStopTimesToTrips()
	out.narrowCalendarToTrips()
	return out
}

// FilterByTripIDs keeps only the given trips and their stop_times.
func (v *View) FilterByTripIDs(tripIDs []string) *View {
	wanted := stringSet(tripIDs)
	out := v.copy()
	util.InPlaceFilter(&out.Trips, func(t gtfs.Trip) bool {
		return wanted[t.ID]
	})
	out.narrowStopTimesToTrips()
	return out
}

// GetSingleTrip returns the only trip in the view, or NoTripError /
// TwoTripsError when the view has been narrowed too much or not enough.
func (v *View) GetSingleTrip() (*gtfs.Trip, error) {
	switch len(v.Trips) {
	case 0:
		return nil, &NoTripError{}
	case 1:
		return &v.Trips[0], nil
	default:
		tripIDs := make([]string, len(v.Trips))
		for i, trip := range v.Trips {
			tripIDs[i] = trip.ID
		}
		return nil, &TwoTripsError{TripShortName: v.Trips[0].ShortName, TripIDs: tripIDs}
	}
}

func validGTFSDay(day string) bool {
	return util.ContainsString(gtfs.GTFSDays, day)
}

func stringSet(values []string) map[string]bool {
	set := map[string]bool{}
	for _, value := range values {
		set[value] = true
	}
	return set
}
