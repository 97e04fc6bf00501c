package timetable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/neroden/timetable-kit/pkg/agency"
	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/schedule"
	"github.com/neroden/timetable-kit/pkg/spec"
)

const maxColumnWorkers = 8

// Filler resolves one spec against one schedule view. The view must already
// be filtered to the reference date so train numbers are unique.
type Filler struct {
	spec     *spec.Spec
	resolver *schedule.Resolver
	agency   agency.Agency

	agencyTimezone string
	referenceDate  string

	// Per train-spec key ("59", "91 monday"): resolved trip, endpoints.
	trips     map[string]*gtfs.Trip
	firstStop map[string]string
	lastStop  map[string]string
	// Keys which could not be resolved but were noheader everywhere, so
	// their columns degrade instead of aborting.
	degraded map[string]bool

	// Station codes present in the spec, and which of them get two-row
	// (arrival and departure) treatment because some train dwells there.
	stationCodes map[string]bool
	ardpStations map[string]bool
}

// NewFiller resolves every train in the spec up front. A resolution failure
// for a required train is fatal; "noheader" connecting services degrade
// with a warning.
func NewFiller(ttSpec *spec.Spec, view *schedule.View, ag agency.Agency) (*Filler, error) {
	if ttSpec.Aux.ReferenceDate == "" {
		return nil, &schedule.InputError{Message: "no reference date in options file or at command line"}
	}
	if len(view.Agencies) == 0 {
		return nil, &schedule.InputError{Message: "schedule has no agency table"}
	}

	f := &Filler{
		spec:           ttSpec,
		resolver:       schedule.NewResolver(view),
		agency:         ag,
		agencyTimezone: view.Agencies[0].Timezone,
		referenceDate:  ttSpec.Aux.ReferenceDate,
		trips:          map[string]*gtfs.Trip{},
		firstStop:      map[string]string{},
		lastStop:       map[string]string{},
		degraded:       map[string]bool{},
		stationCodes:   map[string]bool{},
		ardpStations:   map[string]bool{},
	}

	if dupes := f.resolver.FindTripShortNameDupes(); len(dupes) > 0 {
		log.Warn().Strs("trainNumbers", dupes).
			Msg("Duplicate train numbers; without a day disambiguator an arbitrary trip wins")
	}

	if err := f.resolveTrains(); err != nil {
		return nil, err
	}
	f.buildDwellMap()
	return f, nil
}

// resolveTrains builds the key to trip mapping plus first/last stop tables.
func (f *Filler) resolveTrains() error {
	required := map[string]bool{}
	byKey := map[string]spec.TrainSpec{}
	var order []string
	for _, col := range f.spec.Cols {
		for _, ts := range col.Trains {
			key := ts.Key()
			if _, seen := byKey[key]; !seen {
				byKey[key] = ts
				order = append(order, key)
			}
			if !ts.NoHeader {
				required[key] = true
			}
		}
	}

	for _, key := range order {
		ts := byKey[key]
		trip, err := f.resolver.GetTrip(ts.TripShortName, f.referenceDate, ts.Weekday)
		if err != nil {
			var twoTrips *schedule.TwoTripsError
			if errors.As(err, &twoTrips) && f.spec.Aux.AllowDuplicateTrips {
				// Amtrak publishes some genuinely duplicated trips with
				// identical timings. Last one wins, as good as any.
				log.Warn().Str("trainSpec", key).Strs("tripIDs", twoTrips.TripIDs).
					Msg("Duplicate trips allowed; using the last")
				trip, err = f.resolver.Trip(twoTrips.TripIDs[len(twoTrips.TripIDs)-1])
			}
		}
		if err != nil {
			if required[key] {
				return fmt.Errorf("failed to resolve train %q for %s: %w", key, f.referenceDate, err)
			}
			log.Warn().Str("trainSpec", key).Err(err).
				Msg("Connecting service not found; its cells will be blank")
			f.degraded[key] = true
			continue
		}

		f.trips[key] = trip
		stations := f.resolver.StationsList(trip.ID)
		if len(stations) > 0 {
			f.firstStop[key] = f.agency.StopIDToStopCode(stations[0])
			f.lastStop[key] = f.agency.StopIDToStopCode(stations[len(stations)-1])
		}
	}
	return nil
}

// buildDwellMap decides per station whether any train dwells at or past the
// cutoff, which switches the whole row to two-row format.
func (f *Filler) buildDwellMap() {
	cutoff := f.spec.Aux.DwellSecsCutoff
	for _, code := range f.spec.StationCodes() {
		f.stationCodes[code] = true
		stopID := f.agency.StopCodeToStopID(code)

		maxDwell := 0
		for _, trip := range f.trips {
			dwell, err := f.resolver.DwellSecs(trip.ID, stopID)
			if err != nil {
				log.Warn().Str("tripID", trip.ID).Str("station", code).Err(err).
					Msg("Failed to compute dwell")
				continue
			}
			if dwell > maxDwell {
				maxDwell = dwell
			}
		}
		f.ardpStations[code] = maxDwell >= cutoff
	}
}

// Fill resolves the whole grid. Columns are resolved in parallel; they are
// independent given the shared read-only view.
func Fill(ttSpec *spec.Spec, view *schedule.View, ag agency.Agency) (*Timetable, error) {
	filler, err := NewFiller(ttSpec, view, ag)
	if err != nil {
		return nil, err
	}

	if ttSpec.Aux.ProgrammersWarning != "" {
		log.Warn().Msg(ttSpec.Aux.ProgrammersWarning)
	}

	type columnResult struct {
		index int
		cells []ResolvedCell
	}

	p := pool.NewWithResults[columnResult]().WithErrors().WithMaxGoroutines(maxColumnWorkers)
	for x := range ttSpec.Cols {
		p.Go(func() (columnResult, error) {
			cells, err := filler.fillColumn(x)
			if err != nil {
				return columnResult{}, fmt.Errorf("failed to fill column %d: %w", x+1, err)
			}
			return columnResult{index: x, cells: cells}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	timetable := &Timetable{Spec: ttSpec}
	timetable.Cells = make([][]ResolvedCell, len(ttSpec.Rows)+1)
	for y := range timetable.Cells {
		timetable.Cells[y] = make([]ResolvedCell, len(ttSpec.Cols)+1)
	}
	for _, result := range results {
		for y, cell := range result.cells {
			timetable.Cells[y][result.index+1] = cell
		}
	}
	return timetable, nil
}

// fillColumn resolves one spec column top to bottom, header included.
func (f *Filler) fillColumn(x int) ([]ResolvedCell, error) {
	col := f.spec.Cols[x]
	cells := make([]ResolvedCell, len(f.spec.Rows)+1)

	header, err := f.columnHeader(col)
	if err != nil {
		return nil, err
	}
	cells[0] = header

	useBusIcon, err := f.columnHasBus(col)
	if err != nil {
		return nil, err
	}
	useBaggageIcon := f.columnHasBaggage(col)

	for y, row := range f.spec.Rows {
		cell, err := f.fillCell(row, col, row.Cells[x], useBusIcon, useBaggageIcon)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", y+1, err)
		}
		cells[y+1] = cell
	}
	return cells, nil
}

func (f *Filler) columnHeader(col spec.ColSpec) (ResolvedCell, error) {
	switch col.Kind {
	case spec.ColBlank:
		return ResolvedCell{Kind: CellBlank}, nil
	case spec.ColStation:
		return ResolvedCell{Kind: CellHeader, Text: "Station"}, nil
	case spec.ColServices:
		return ResolvedCell{Kind: CellHeader, Text: "Services"}, nil
	case spec.ColAccess:
		return ResolvedCell{Kind: CellHeader, Text: "Access"}, nil
	case spec.ColTimezone:
		return ResolvedCell{Kind: CellHeader, Text: "Time Zone"}, nil
	case spec.ColMile:
		return ResolvedCell{Kind: CellHeader, Text: "Mile"}, nil
	}

	text, err := f.trainColumnHeader(col)
	if err != nil {
		return ResolvedCell{}, err
	}
	return ResolvedCell{Kind: CellHeader, Text: text}, nil
}

// trainColumnHeader builds the "Train #" header block for a time column,
// stacking the trains or joining them side by side per the options.
func (f *Filler) trainColumnHeader(col spec.ColSpec) (string, error) {
	var shown []spec.TrainSpec
	for _, ts := range col.Trains {
		if ts.NoHeader {
			continue
		}
		shown = append(shown, ts)
	}
	// All noheader is fine; the column simply has no header.
	if len(shown) == 0 {
		return "", nil
	}

	var routeTypes []int
	for _, ts := range shown {
		routeType, err := f.routeType(ts.Key())
		if err != nil {
			return "", err
		}
		routeTypes = append(routeTypes, routeType)
	}

	if f.spec.Aux.TrainNumbersSideBySide {
		numbers := make([]string, len(shown))
		for i, ts := range shown {
			numbers[i] = ts.TripShortName
		}
		return sideBySidePrefix(routeTypes) + "\n" + strings.Join(numbers, " / "), nil
	}

	lines := make([]string, len(shown))
	for i, ts := range shown {
		prefix := routeNumberPrefix(routeTypes[i])
		if f.agency.IsConnectingService(ts.TripShortName) {
			prefix = "Connecting Service #"
		}
		lines[i] = prefix + "\n" + ts.TripShortName
	}
	return strings.Join(lines, "\n"), nil
}

func (f *Filler) routeType(key string) (int, error) {
	trip, ok := f.trips[key]
	if !ok {
		// Degraded connecting service; call it a bus, the usual case.
		return 3, nil
	}
	route, err := f.resolver.Route(trip.RouteID)
	if err != nil {
		return 0, err
	}
	return route.Type, nil
}

func (f *Filler) columnHasBus(col spec.ColSpec) (bool, error) {
	if !f.spec.Aux.UseBusIconInCells {
		return false, nil
	}
	for _, ts := range col.Trains {
		trip, ok := f.trips[ts.Key()]
		if !ok {
			continue
		}
		route, err := f.resolver.Route(trip.RouteID)
		if err != nil {
			return false, err
		}
		if route.Type == 3 {
			return true, nil
		}
	}
	return false, nil
}

func (f *Filler) columnHasBaggage(col spec.ColSpec) bool {
	for _, ts := range col.Trains {
		if f.agency.TrainHasCheckedBaggage(ts.TripShortName) {
			return true
		}
	}
	return false
}

// fillCell resolves one coordinate. The precedence follows the spec
// grammar: whole-cell substitutions first, then per-row special codes,
// then per-column special codes, then the time path.
func (f *Filler) fillCell(row spec.RowSpec, col spec.ColSpec, raw string, useBusIcon bool, useBaggageIcon bool) (ResolvedCell, error) {
	var cellCode *spec.CellCode
	if col.Kind == spec.ColTrains {
		var err error
		cellCode, err = spec.ParseCellCode(raw, col.Trains)
		if err != nil {
			return ResolvedCell{}, err
		}
	}

	if substitution, ok := cellSubstitution(raw); ok {
		return substitution, nil
	}

	switch row.Kind {
	case spec.RowBlank:
		if raw == "" {
			return ResolvedCell{Kind: CellBlank}, nil
		}
		if cellCode != nil && cellCode.Blank {
			return ResolvedCell{Kind: CellBlank, Train: cellCode.Train.TripShortName}, nil
		}
		// Raw text such as "To Chicago".
		return ResolvedCell{Kind: CellFreeText, Text: raw}, nil

	case spec.RowRouteName:
		if col.Kind != spec.ColTrains {
			return ResolvedCell{Kind: CellFreeText, Text: raw}, nil
		}
		return f.routeNameCell(col)

	case spec.RowUpDown:
		if col.Kind != spec.ColTrains {
			return ResolvedCell{Kind: CellFreeText, Text: raw}, nil
		}
		text := "Read Down"
		if col.Options.Reverse {
			text = "Read Up"
		}
		return ResolvedCell{Kind: CellUpDown, Text: text}, nil

	case spec.RowDays:
		if col.Kind != spec.ColTrains {
			return ResolvedCell{Kind: CellFreeText, Text: raw}, nil
		}
		return f.daysCell(col, raw)

	case spec.RowOrigin:
		return f.originDestinationCell(col, raw, true)
	case spec.RowDestination:
		return f.originDestinationCell(col, raw, false)
	}

	// Station row from here on.
	if col.Kind == spec.ColMile {
		// Mileage is typed in by hand.
		return ResolvedCell{Kind: CellMile, Text: raw}, nil
	}

	// Handwritten text wins over anything derived, station names included.
	if raw != "" && cellCode == nil {
		return ResolvedCell{Kind: CellFreeText, Text: raw}, nil
	}

	switch col.Kind {
	case spec.ColStation:
		return ResolvedCell{Kind: CellStationName, Text: f.agency.StationName(row.StationCode)}, nil
	case spec.ColServices:
		// Station services icons are resolved by the renderer's icon
		// tables; the core only marks the cell.
		return ResolvedCell{Kind: CellServices}, nil
	case spec.ColAccess:
		return f.accessCell(row.StationCode), nil
	case spec.ColTimezone:
		return f.timezoneCell(row.StationCode)
	case spec.ColBlank:
		return ResolvedCell{Kind: CellBlank}, nil
	}

	return f.timeCell(row.StationCode, col, cellCode, useBusIcon, useBaggageIcon)
}

func (f *Filler) routeNameCell(col spec.ColSpec) (ResolvedCell, error) {
	var names []string
	for _, ts := range col.Trains {
		if ts.NoHeader {
			continue
		}
		trip, ok := f.trips[ts.Key()]
		if !ok {
			continue
		}
		name, err := f.agency.RouteName(f.resolver.View(), trip.RouteID)
		if err != nil {
			return ResolvedCell{}, err
		}
		// Slashed trains on the same route get one name, not two.
		if len(names) == 0 || names[len(names)-1] != name {
			names = append(names, name)
		}
	}
	return ResolvedCell{Kind: CellRouteName, Text: strings.Join(names, "\n")}, nil
}

// daysCell fills a days-of-week row. The cell's raw value names the
// reference station whose local departure decides the day offset; this only
// works cleanly for trains which don't run across midnight.
func (f *Filler) daysCell(col spec.ColSpec, referenceStopCode string) (ResolvedCell, error) {
	if referenceStopCode == "" {
		return ResolvedCell{Kind: CellDays}, nil
	}
	if len(col.Trains) == 0 {
		return ResolvedCell{Kind: CellFreeText, Text: referenceStopCode}, nil
	}
	if len(col.Trains) > 1 {
		log.Warn().Str("trainSpec", col.Trains[0].Key()).Msg("Using only first train for days header")
	}

	trip, ok := f.trips[col.Trains[0].Key()]
	if !ok {
		return ResolvedCell{Kind: CellDays}, nil
	}
	stopID := f.agency.StopCodeToStopID(referenceStopCode)
	timepoint, err := f.resolver.Timepoint(trip.ID, stopID)
	if err != nil {
		return ResolvedCell{}, err
	}
	if timepoint == nil {
		// Manual override; pass the text through.
		return ResolvedCell{Kind: CellFreeText, Text: referenceStopCode}, nil
	}

	zonediff, err := f.stopZoneDiff(stopID)
	if err != nil {
		return ResolvedCell{}, err
	}
	departureSecs, err := schedule.ParseTimeSecs(timepoint.DepartureTime)
	if err != nil {
		return ResolvedCell{}, err
	}
	departure := schedule.ExplodeTime(departureSecs, zonediff)

	calendar, err := f.resolver.Calendar(trip.ServiceID)
	if err != nil {
		return ResolvedCell{}, err
	}
	daystring, err := schedule.DayString(calendar, departure.Day)
	if err != nil {
		return ResolvedCell{}, err
	}
	return ResolvedCell{Kind: CellDays, Text: daystring, Train: col.Trains[0].TripShortName}, nil
}

func (f *Filler) originDestinationCell(col spec.ColSpec, raw string, origin bool) (ResolvedCell, error) {
	if col.Kind == spec.ColStation {
		// Spacer so the row keeps its height on pages with no origin cells.
		return ResolvedCell{Kind: CellOriginDest}, nil
	}
	if col.Kind != spec.ColTrains {
		return ResolvedCell{Kind: CellFreeText, Text: raw}, nil
	}
	if raw != "" {
		return ResolvedCell{Kind: CellFreeText, Text: raw}, nil
	}
	if len(col.Trains) == 0 {
		return ResolvedCell{Kind: CellBlank}, nil
	}

	key := col.Trains[0].Key()
	endpoint, ok := f.firstStop[key]
	prefix := "From "
	if !origin {
		endpoint, ok = f.lastStop[key]
		prefix = "To "
	}
	if !ok || f.stationCodes[endpoint] {
		// Endpoint is on this timetable already; nothing to announce.
		return ResolvedCell{Kind: CellOriginDest}, nil
	}
	return ResolvedCell{Kind: CellOriginDest, Text: prefix + f.agency.StationName(endpoint)}, nil
}

func (f *Filler) accessCell(stopCode string) ResolvedCell {
	switch {
	case f.agency.StationHasAccessiblePlatform(stopCode):
		return ResolvedCell{Kind: CellAccess, Text: "accessible"}
	case f.agency.StationHasInaccessiblePlatform(stopCode):
		return ResolvedCell{Kind: CellAccess, Text: "inaccessible"}
	}
	return ResolvedCell{Kind: CellAccess}
}

func (f *Filler) timezoneCell(stopCode string) (ResolvedCell, error) {
	stop, err := f.resolver.Stop(f.agency.StopCodeToStopID(stopCode))
	if err != nil {
		return ResolvedCell{}, err
	}
	zone := stop.Timezone
	if zone == "" {
		zone = f.agencyTimezone
	}
	if abbrev, ok := schedule.TimezoneAbbrev[zone]; ok {
		zone = abbrev
	}
	return ResolvedCell{Kind: CellTimezone, Text: zone}, nil
}

// timeCell is the main routine for putting a time in a cell. For a slashed
// column the first listed train which stops at the station supplies the
// time; a cell code narrows to one specific train.
func (f *Filler) timeCell(stationCode string, col spec.ColSpec, cellCode *spec.CellCode, useBusIcon bool, useBaggageIcon bool) (ResolvedCell, error) {
	stopID := f.agency.StopCodeToStopID(stationCode)

	var keysToCheck []string
	if cellCode != nil && cellCode.Train != nil {
		keysToCheck = []string{cellCode.Train.Key()}
	} else {
		for _, ts := range col.Trains {
			keysToCheck = append(keysToCheck, ts.Key())
		}
	}

	var winner string
	var timepoint *gtfs.StopTime
	for _, key := range keysToCheck {
		trip, ok := f.trips[key]
		if !ok {
			continue
		}
		found, err := f.resolver.Timepoint(trip.ID, stopID)
		if err != nil {
			return ResolvedCell{}, err
		}
		if found != nil {
			winner = key
			timepoint = found
			break
		}
	}

	if timepoint == nil || (cellCode != nil && cellCode.Blank) {
		blank := ResolvedCell{Kind: CellBlank}
		if len(keysToCheck) == 1 {
			blank.Train = trainSpecToTSN(keysToCheck[0])
		}
		return blank, nil
	}

	trip := f.trips[winner]
	tsn := trainSpecToTSN(winner)

	zonediff, err := f.stopZoneDiff(stopID)
	if err != nil {
		return ResolvedCell{}, err
	}

	cell := &TimeCell{
		TripID:         trip.ID,
		TripShortName:  tsn,
		Timepoint:      *timepoint,
		ZoneDiff:       zonediff,
		Reverse:        col.Options.Reverse,
		UseArDp:        col.Options.ArDp,
		NoRD:           col.Options.NoRD,
		LongDaysBox:    col.Options.LongDaysBox,
		ShortDaysBox:   col.Options.ShortDaysBox,
		UseBaggageIcon: useBaggageIcon,
		UseBusIcon:     useBusIcon,
	}

	if cellCode != nil {
		cell.IsFirstStop = cellCode.First
		cell.IsLastStop = cellCode.Last
	}
	if stationCode == f.firstStop[winner] {
		cell.IsFirstStop = true
	}
	if stationCode == f.lastStop[winner] {
		cell.IsLastStop = true
	}

	cell.TwoRow = f.ardpStations[stationCode]
	if cellCode != nil {
		if !cellCode.TwoRow && (cellCode.First || cellCode.Last) {
			cell.TwoRow = false
		}
		if cellCode.TwoRow {
			cell.TwoRow = true
		}
	}

	if col.Options.Days {
		calendar, err := f.resolver.Calendar(trip.ServiceID)
		if err != nil {
			return ResolvedCell{}, err
		}
		if timepoint.ArrivalTime != "" {
			secs, err := schedule.ParseTimeSecs(timepoint.ArrivalTime)
			if err != nil {
				return ResolvedCell{}, err
			}
			cell.ArrivalDayString, err = schedule.DayString(calendar, schedule.ExplodeTime(secs, zonediff).Day)
			if err != nil {
				return ResolvedCell{}, err
			}
		}
		if timepoint.DepartureTime != "" {
			secs, err := schedule.ParseTimeSecs(timepoint.DepartureTime)
			if err != nil {
				return ResolvedCell{}, err
			}
			cell.DepartureDayString, err = schedule.DayString(calendar, schedule.ExplodeTime(secs, zonediff).Day)
			if err != nil {
				return ResolvedCell{}, err
			}
		}
	}

	if useBaggageIcon {
		cell.HasBaggage = f.agency.TrainHasCheckedBaggage(tsn) &&
			f.agency.StationHasCheckedBaggage(stationCode)
	}
	if useBusIcon {
		route, err := f.resolver.Route(trip.RouteID)
		if err != nil {
			return ResolvedCell{}, err
		}
		cell.IsBus = route.Type == 3
	}

	return ResolvedCell{Kind: CellTime, Train: tsn, Time: cell}, nil
}

func (f *Filler) stopZoneDiff(stopID string) (int, error) {
	stop, err := f.resolver.Stop(stopID)
	if err != nil {
		return 0, err
	}
	return schedule.ZoneDiff(stop.Timezone, f.agencyTimezone, f.referenceDate)
}

// cellSubstitution handles whole-cell tokens: "blank" for a plain white
// cell and the arrow names for connection arrows.
func cellSubstitution(raw string) (ResolvedCell, bool) {
	if raw == "blank" {
		return ResolvedCell{Kind: CellBlank}, true
	}
	if spec.IsArrowName(raw) {
		return ResolvedCell{Kind: CellArrow, Text: raw}, true
	}
	return ResolvedCell{}, false
}

// trainSpecToTSN strips a weekday qualifier off a train-spec key.
func trainSpecToTSN(key string) string {
	for _, day := range gtfs.GTFSDays {
		if rest, found := strings.CutSuffix(key, " "+day); found {
			return rest
		}
	}
	return key
}
