package schedule

import "fmt"

// NoTripError means a lookup expected exactly one trip and found none.
type NoTripError struct {
	TripShortName string
}

func (e *NoTripError) Error() string {
	return fmt.Sprintf("no trip found for train %q", e.TripShortName)
}

// TwoTripsError means a lookup expected exactly one trip and found several,
// usually because of overlapping calendars.
type TwoTripsError struct {
	TripShortName string
	TripIDs       []string
}

func (e *TwoTripsError) Error() string {
	return fmt.Sprintf("expected single trip for train %q, found %d: %v", e.TripShortName, len(e.TripIDs), e.TripIDs)
}

// TwoStopsError means a trip stops at the same station twice.
type TwoStopsError struct {
	TripID string
	StopID string
}

func (e *TwoStopsError) Error() string {
	return fmt.Sprintf("trip %q stops at %q more than once", e.TripID, e.StopID)
}

// InputError means the caller passed something malformed, such as a bad
// GTFS day name or an unparseable time string.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}
