package spec

import (
	"sort"
	"strings"

	"github.com/neroden/timetable-kit/pkg/schedule"
)

// RowKind classifies a grid row by its first-column code.
type RowKind int

const (
	RowStation RowKind = iota
	RowBlank
	RowRouteName
	RowUpDown
	RowDays
	RowOrigin
	RowDestination
)

// ColKind classifies a grid column by its header.
type ColKind int

const (
	ColTrains ColKind = iota
	ColBlank
	ColStation
	ColServices
	ColAccess
	ColTimezone
	ColMile
)

// ColOptions is the parsed per-column rendering option set.
type ColOptions struct {
	Reverse      bool
	Days         bool
	LongDaysBox  bool
	ShortDaysBox bool
	ArDp         bool
	NoRD         bool
}

// ParseColOptions reads whitespace-split option tokens. Unknown tokens are
// a ParseError; a typo here otherwise produces a silently wrong timetable.
func ParseColOptions(tokens []string) (ColOptions, error) {
	options := ColOptions{}
	for _, token := range tokens {
		switch token {
		case "reverse":
			options.Reverse = true
		case "days":
			options.Days = true
		case "long-days-box":
			options.LongDaysBox = true
		case "short-days-box":
			options.ShortDaysBox = true
		case "ardp":
			options.ArDp = true
		case "no-rd":
			options.NoRD = true
		default:
			return options, &ParseError{Message: "unknown column option " + token}
		}
	}
	return options, nil
}

// Tokens serializes the option set back to its grid form. Token order is
// fixed; parsing and re-serializing is stable regardless of input order.
func (o ColOptions) Tokens() []string {
	var tokens []string
	if o.Reverse {
		tokens = append(tokens, "reverse")
	}
	if o.Days {
		tokens = append(tokens, "days")
	}
	if o.LongDaysBox {
		tokens = append(tokens, "long-days-box")
	}
	if o.ShortDaysBox {
		tokens = append(tokens, "short-days-box")
	}
	if o.ArDp {
		tokens = append(tokens, "ardp")
	}
	if o.NoRD {
		tokens = append(tokens, "no-rd")
	}
	return tokens
}

// RowSpec is one classified grid row.
type RowSpec struct {
	Kind RowKind
	// StationCode is set for RowStation rows.
	StationCode string
	// Cells holds the row's raw cell values past column 0, aligned with
	// Spec.Cols. Overrides and free text are interpreted during filling.
	Cells []string
}

// ColSpec is one classified grid column.
type ColSpec struct {
	Kind    ColKind
	Header  string
	Trains  []TrainSpec
	Options ColOptions
}

// Spec is a fully classified timetable spec, ready for cell resolution.
// Produced by Parse after shorthand expansion and option extraction.
type Spec struct {
	Aux  *Options
	Rows []RowSpec
	Cols []ColSpec
}

// Parse classifies a preprocessed TTSpec (omits stripped, column options
// extracted, shorthand expanded) into a Spec. Station codes in the first
// column are validated against the view's stops; anything which is neither
// a known code nor special vocabulary is rejected.
func Parse(s *TTSpec, view *schedule.View, stopCodeToStopID func(string) string) (*Spec, error) {
	if len(s.Grid) == 0 {
		return nil, &ParseError{Message: "empty spec grid"}
	}
	resolver := schedule.NewResolver(view)

	spec := &Spec{Aux: s.Aux}

	for x, header := range s.Grid[0] {
		if x == 0 {
			continue
		}
		var tokens []string
		if x < len(s.ColumnOptions) {
			tokens = s.ColumnOptions[x]
		}
		options, err := ParseColOptions(tokens)
		if err != nil {
			parseErr := err.(*ParseError)
			parseErr.Col = x
			return nil, parseErr
		}

		col := ColSpec{Header: header, Options: options}
		switch strings.ToLower(header) {
		case "":
			col.Kind = ColBlank
		case "station", "stations":
			col.Kind = ColStation
		case "services":
			col.Kind = ColServices
		case "access":
			col.Kind = ColAccess
		case "timezone":
			col.Kind = ColTimezone
		case "mile":
			col.Kind = ColMile
		default:
			col.Kind = ColTrains
			trains, err := ParseTrainsSpec(header)
			if err != nil {
				return nil, &UnknownColumnCodeError{Col: x, Code: header}
			}
			col.Trains = trains
		}
		spec.Cols = append(spec.Cols, col)
	}

	for y, gridRow := range s.Grid {
		if y == 0 {
			continue
		}
		code := gridRow[0]
		row := RowSpec{Cells: gridRow[1:]}
		switch strings.ToLower(code) {
		case "":
			row.Kind = RowBlank
		case "route-name":
			row.Kind = RowRouteName
		case "updown":
			row.Kind = RowUpDown
		case "days", "days-of-week":
			row.Kind = RowDays
		case "origin":
			row.Kind = RowOrigin
		case "destination":
			row.Kind = RowDestination
		default:
			row.Kind = RowStation
			row.StationCode = code
			if !resolver.StopExists(stopCodeToStopID(code)) {
				return nil, &UnknownRowCodeError{Row: y, Code: code}
			}
		}
		spec.Rows = append(spec.Rows, row)
	}

	return spec, nil
}

// StationCodes returns the spec's station codes in row order.
func (s *Spec) StationCodes() []string {
	var codes []string
	for _, row := range s.Rows {
		if row.Kind == RowStation {
			codes = append(codes, row.StationCode)
		}
	}
	return codes
}

// SortedTrainKeys returns the deduplicated train-spec keys of all train
// columns, sorted. Handy for stable log output and error messages.
func (s *Spec) SortedTrainKeys() []string {
	keys := FlattenTrainSpecs(s.Cols)
	sort.Strings(keys)
	return keys
}
