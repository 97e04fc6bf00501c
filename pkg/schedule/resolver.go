package schedule

import (
	"fmt"
	"sort"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"

	"github.com/neroden/timetable-kit/pkg/gtfs"
)

const timepointCacheSize = 16384

// Resolver answers trip lookups against a single View. The view should
// normally be filtered to one reference date first, so train numbers are
// unique. Timepoint lookups are memoized because the naive scan over
// stop_times dominates timetable generation time.
type Resolver struct {
	view       *View
	timepoints gcache.Cache
}

func NewResolver(view *View) *Resolver {
	return &Resolver{
		view:       view,
		timepoints: gcache.New(timepointCacheSize).LRU().Build(),
	}
}

func (r *Resolver) View() *View {
	return r.view
}

// GetTrip finds the single trip for a train number active on the reference
// date: its calendar must cover the date's range and run on the date's own
// weekday. An optional weekday ("monday".."sunday") narrows further, for
// train numbers which run different schedules on different days. Zero
// matches is NoTripError; several matches is TwoTripsError, never a silent
// pick.
func (r *Resolver) GetTrip(tripShortName string, referenceDate string, weekday string) (*gtfs.Trip, error) {
	referenceDay, err := WeekdayName(referenceDate)
	if err != nil {
		return nil, err
	}

	filtered, err := r.view.
		FilterByTripShortNames([]string{tripShortName}).
		FilterByDates(referenceDate, referenceDate).
		FilterByDayOfWeek(referenceDay)
	if err != nil {
		return nil, err
	}

	if weekday != "" {
		filtered, err = filtered.FilterByDayOfWeek(weekday)
		if err != nil {
			return nil, err
		}
	}

	trip, err := filtered.GetSingleTrip()
	switch e := err.(type) {
	case nil:
		return trip, nil
	case *NoTripError:
		e.TripShortName = tripShortName
		return nil, e
	case *TwoTripsError:
		e.TripShortName = tripShortName
		return nil, e
	default:
		return nil, err
	}
}

// TripShortName recovers the train number for a trip_id.
func (r *Resolver) TripShortName(tripID string) (string, error) {
	for _, trip := range r.view.Trips {
		if trip.ID == tripID {
			return trip.ShortName, nil
		}
	}
	return "", &NoTripError{TripShortName: tripID}
}

// Trip returns the trip record for a trip_id.
func (r *Resolver) Trip(tripID string) (*gtfs.Trip, error) {
	for i := range r.view.Trips {
		if r.view.Trips[i].ID == tripID {
			return &r.view.Trips[i], nil
		}
	}
	return nil, &NoTripError{TripShortName: tripID}
}

// TripStopTimes returns the stop times of a trip ordered by stop_sequence.
func (r *Resolver) TripStopTimes(tripID string) []gtfs.StopTime {
	var stopTimes []gtfs.StopTime
	for _, stopTime := range r.view.StopTimes {
		if stopTime.TripID == tripID {
			stopTimes = append(stopTimes, stopTime)
		}
	}
	sort.Slice(stopTimes, func(i, j int) bool {
		return stopTimes[i].StopSequence < stopTimes[j].StopSequence
	})
	return stopTimes
}

// Timepoint returns the stop_time record for a trip at a stop, or nil when
// the trip does not stop there (that is normal, not an error). A trip
// stopping twice at the same stop is TwoStopsError.
func (r *Resolver) Timepoint(tripID string, stopID string) (*gtfs.StopTime, error) {
	cacheKey := tripID + "\x00" + stopID
	if cached, err := r.timepoints.Get(cacheKey); err == nil {
		if cached == nil {
			return nil, nil
		}
		return cached.(*gtfs.StopTime), nil
	}

	var found *gtfs.StopTime
	for i := range r.view.StopTimes {
		stopTime := &r.view.StopTimes[i]
		if stopTime.TripID != tripID || stopTime.StopID != stopID {
			continue
		}
		if found != nil {
			return nil, &TwoStopsError{TripID: tripID, StopID: stopID}
		}
		found = stopTime
	}

	if err := r.timepoints.Set(cacheKey, found); err != nil {
		log.Debug().Err(err).Msg("Failed to cache timepoint")
	}
	if found == nil {
		return nil, nil
	}
	return found, nil
}

// DwellSecs returns departure minus arrival at a stop, in seconds. Zero if
// the trip doesn't stop there, and zero for receive-only / discharge-only
// stops, which have no meaningful dwell.
func (r *Resolver) DwellSecs(tripID string, stopID string) (int, error) {
	timepoint, err := r.Timepoint(tripID, stopID)
	if err != nil {
		return 0, err
	}
	if timepoint == nil {
		return 0, nil
	}
	if timepoint.DropOffType == 1 || timepoint.PickupType == 1 {
		return 0, nil
	}

	departure, err := ParseTimeSecs(timepoint.DepartureTime)
	if err != nil {
		return 0, err
	}
	arrival, err := ParseTimeSecs(timepoint.ArrivalTime)
	if err != nil {
		return 0, err
	}
	return departure - arrival, nil
}

// Calendar returns the single calendar row for a service_id.
func (r *Resolver) Calendar(serviceID string) (*gtfs.Calendar, error) {
	var found *gtfs.Calendar
	for i := range r.view.Calendars {
		if r.view.Calendars[i].ServiceID != serviceID {
			continue
		}
		if found != nil {
			return nil, &InputError{Message: fmt.Sprintf("two calendars for service %q", serviceID)}
		}
		found = &r.view.Calendars[i]
	}
	if found == nil {
		return nil, &InputError{Message: fmt.Sprintf("no calendar for service %q", serviceID)}
	}
	return found, nil
}

// Route returns the route record for a route_id.
func (r *Resolver) Route(routeID string) (*gtfs.Route, error) {
	for i := range r.view.Routes {
		if r.view.Routes[i].ID == routeID {
			return &r.view.Routes[i], nil
		}
	}
	return nil, &InputError{Message: fmt.Sprintf("no route %q", routeID)}
}

// Stop returns the stop record for a stop_id.
func (r *Resolver) Stop(stopID string) (*gtfs.Stop, error) {
	for i := range r.view.Stops {
		if r.view.Stops[i].ID == stopID {
			return &r.view.Stops[i], nil
		}
	}
	return nil, &InputError{Message: fmt.Sprintf("no stop %q", stopID)}
}

// StopExists reports whether a stop_id is present in the view.
func (r *Resolver) StopExists(stopID string) bool {
	for i := range r.view.Stops {
		if r.view.Stops[i].ID == stopID {
			return true
		}
	}
	return false
}

// StationsList returns the ordered stop_ids of a trip's stop sequence.
func (r *Resolver) StationsList(tripID string) []string {
	stopTimes := r.TripStopTimes(tripID)
	stations := make([]string, len(stopTimes))
	for i, stopTime := range stopTimes {
		stations[i] = stopTime.StopID
	}
	return stations
}

// FindTripShortNameDupes returns train numbers mapping to more than one
// trip in the view. On a feed filtered to one day this list is short, and
// usually means a weekday disambiguator is needed.
func (r *Resolver) FindTripShortNameDupes() []string {
	seen := map[string]bool{}
	dupes := map[string]bool{}
	for _, trip := range r.view.Trips {
		if seen[trip.ShortName] {
			dupes[trip.ShortName] = true
		}
		seen[trip.ShortName] = true
	}

	out := maps.Keys(dupes)
	sort.Strings(out)
	return out
}
