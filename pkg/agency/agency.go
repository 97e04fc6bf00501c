// Package agency holds the agency-specific behavior hooks. Route naming,
// station naming, checked baggage, and platform accessibility vary per
// operator and mostly come from data the GTFS feed doesn't carry. The
// grid assembler takes an Agency value; Generic serves any feed straight
// from the GTFS tables.
package agency

import (
	"github.com/neroden/timetable-kit/pkg/schedule"
)

// Agency answers operator-specific questions during timetable assembly.
type Agency interface {
	// StopCodeToStopID maps a spec's station code to a GTFS stop_id.
	StopCodeToStopID(stopCode string) string
	// StopIDToStopCode is the inverse mapping.
	StopIDToStopCode(stopID string) string
	// StationName returns the display name for a station code.
	StationName(stopCode string) string
	// RouteName returns the column subheading for a route.
	RouteName(view *schedule.View, routeID string) (string, error)
	// TrainHasCheckedBaggage reports whether a train number carries a
	// checked baggage car.
	TrainHasCheckedBaggage(tripShortName string) bool
	// StationHasCheckedBaggage reports whether a station offers checked
	// baggage service.
	StationHasCheckedBaggage(stopCode string) bool
	// StationHasAccessiblePlatform reports a known wheelchair-accessible
	// platform; StationHasInaccessiblePlatform reports a known barrier.
	// Both false means unknown.
	StationHasAccessiblePlatform(stopCode string) bool
	StationHasInaccessiblePlatform(stopCode string) bool
	// IsConnectingService reports whether a train number is operated by a
	// partner rather than the agency itself.
	IsConnectingService(tripShortName string) bool
}

// Generic serves any GTFS feed: stop codes are stop_ids, names come from
// the stops and routes tables, and there is no baggage or accessibility
// knowledge.
type Generic struct {
	stopNames  map[string]string
	routeNames map[string]string
}

func NewGeneric(view *schedule.View) *Generic {
	generic := &Generic{
		stopNames:  map[string]string{},
		routeNames: map[string]string{},
	}
	for _, stop := range view.Stops {
		generic.stopNames[stop.ID] = stop.Name
	}
	for _, route := range view.Routes {
		generic.routeNames[route.ID] = route.LongName
	}
	return generic
}

func (g *Generic) StopCodeToStopID(stopCode string) string { return stopCode }
func (g *Generic) StopIDToStopCode(stopID string) string   { return stopID }

func (g *Generic) StationName(stopCode string) string {
	if name, ok := g.stopNames[stopCode]; ok {
		return name
	}
	return stopCode
}

func (g *Generic) RouteName(view *schedule.View, routeID string) (string, error) {
	if name, ok := g.routeNames[routeID]; ok {
		return name, nil
	}
	resolver := schedule.NewResolver(view)
	route, err := resolver.Route(routeID)
	if err != nil {
		return "", err
	}
	return route.LongName, nil
}

func (g *Generic) TrainHasCheckedBaggage(string) bool         { return false }
func (g *Generic) StationHasCheckedBaggage(string) bool       { return false }
func (g *Generic) StationHasAccessiblePlatform(string) bool   { return false }
func (g *Generic) StationHasInaccessiblePlatform(string) bool { return false }
func (g *Generic) IsConnectingService(string) bool            { return false }
