package spec

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/schedule"
)

// Column headers which are not train numbers.
var specialColumnNames = map[string]bool{
	"":         true,
	"station":  true,
	"stations": true,
	"services": true,
	"access":   true,
	"timezone": true,
	"mile":     true,
}

// First-column values which are not station codes.
var specialRowNames = map[string]bool{
	"":               true,
	"omit":           true,
	"column-options": true,
	"column_options": true,
	"route-name":     true,
	"updown":         true,
	"days":           true,
	"days-of-week":   true,
	"origin":         true,
	"destination":    true,
}

// TTSpec is a raw timetable spec: the grid straight out of the CSV file
// plus the aux options document sharing its base name. Row 0 of the grid is
// the column headers; column 0 is the row codes. ColumnOptions is populated
// by ExtractColumnOptions, which also deletes the column-options row from
// the grid.
type TTSpec struct {
	Aux           *Options
	Grid          [][]string
	ColumnOptions [][]string
}

// FromFiles loads a spec from <base>.csv and <base>.yaml in inputDir. The
// name is accepted with or without a suffix. A missing yaml file just means
// default options.
func FromFiles(name string, inputDir string) (*TTSpec, error) {
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".csv"), ".yaml")

	csvPath := filepath.Join(inputDir, base+".csv")
	yamlPath := filepath.Join(inputDir, base+".yaml")
	log.Debug().Str("csv", csvPath).Str("yaml", yamlPath).Msg("Loading timetable spec")

	aux, err := LoadOptions(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec options %s: %w", yamlPath, err)
	}
	if aux.OutputFilename == "" {
		aux.OutputFilename = filepath.Base(base)
	}

	grid, err := readGrid(csvPath)
	if err != nil {
		return nil, err
	}

	return &TTSpec{Aux: aux, Grid: grid}, nil
}

// readGrid reads a headerless ragged CSV into a rectangular string grid,
// padding short rows with empty cells.
func readGrid(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spec grid %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse spec grid %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, &ParseError{Message: fmt.Sprintf("spec grid %s is empty", path)}
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	grid := make([][]string, len(rows))
	for i, row := range rows {
		grid[i] = make([]string, width)
		for j, cell := range row {
			grid[i][j] = strings.TrimSpace(cell)
		}
	}
	return grid, nil
}

// SetReferenceDate overrides the reference date, typically from the command
// line. An empty date leaves the aux value alone.
func (s *TTSpec) SetReferenceDate(referenceDate string) {
	if referenceDate != "" {
		s.Aux.ReferenceDate = referenceDate
	}
}

// StripOmits removes rows whose first column is "omit". These are the
// spec's comment lines.
func (s *TTSpec) StripOmits() {
	kept := s.Grid[:0]
	for _, row := range s.Grid {
		if row[0] == "omit" {
			continue
		}
		kept = append(kept, row)
	}
	s.Grid = kept
}

func isColumnOptionsMarker(token string) bool {
	switch strings.ToLower(token) {
	case "column-options", "column_options":
		return true
	}
	return false
}

// ExtractColumnOptions pulls the column-options row (row 1, directly under
// the headers) out of the grid into the ColumnOptions structure, one token
// list per column. Tokens following the marker in column 0 are page-wide
// options appended to every column; Split uses that slot to force ardp onto
// continuation pages. Without an options row every column gets an empty
// list.
func (s *TTSpec) ExtractColumnOptions() {
	width := 0
	if len(s.Grid) > 0 {
		width = len(s.Grid[0])
	}
	s.ColumnOptions = make([][]string, width)
	for i := range s.ColumnOptions {
		s.ColumnOptions[i] = []string{}
	}

	if len(s.Grid) < 2 {
		return
	}
	markerFields := strings.Fields(s.Grid[1][0])
	if len(markerFields) == 0 || !isColumnOptionsMarker(markerFields[0]) {
		return
	}
	pageOptions := markerFields[1:]

	for i, cell := range s.Grid[1] {
		if i == 0 {
			continue
		}
		s.ColumnOptions[i] = append(strings.Fields(cell), pageOptions...)
	}
	s.Grid = append(s.Grid[:1], s.Grid[2:]...)
	log.Debug().Interface("columnOptions", s.ColumnOptions).Msg("Column options separated from grid")
}

// AugmentFromKeyCell expands a shorthand spec. The top-left cell is
// normally blank; "stations of 59" appends one row per station of train
// 59's stop sequence on the reference date. The expansion happens once,
// before any other processing, so downstream stages only see explicit rows.
func (s *TTSpec) AugmentFromKeyCell(view *schedule.View) error {
	keyCode := s.Grid[0][0]
	if keyCode == "" {
		return nil
	}
	if !strings.HasPrefix(keyCode, "stations of ") {
		return &schedule.InputError{
			Message: fmt.Sprintf("key cell must be blank or 'stations of xxx', was %q", keyCode),
		}
	}

	keyTrainName := strings.TrimPrefix(keyCode, "stations of ")
	log.Debug().Str("tsn", keyTrainName).Msg("Expanding shorthand spec")

	if s.Aux.ReferenceDate == "" {
		return &schedule.InputError{Message: "no reference date for shorthand spec expansion"}
	}
	todayView := view.FilterByDates(s.Aux.ReferenceDate, s.Aux.ReferenceDate)

	for _, day := range gtfs.GTFSDays {
		if rest, found := strings.CutSuffix(keyTrainName, " "+day); found {
			keyTrainName = strings.TrimSpace(rest)
			var err error
			todayView, err = todayView.FilterByDayOfWeek(day)
			if err != nil {
				return err
			}
			break
		}
	}

	resolver := schedule.NewResolver(todayView)
	trip, err := resolver.GetTrip(keyTrainName, s.Aux.ReferenceDate, "")
	if err != nil {
		return err
	}

	width := len(s.Grid[0])
	s.Grid[0][0] = ""
	for _, stopID := range resolver.StationsList(trip.ID) {
		row := make([]string, width)
		row[0] = stopID
		s.Grid = append(s.Grid, row)
	}
	return nil
}

// Split breaks a wide spec into per-page specs of at most
// max_columns_per_page regular columns each, repeating the special columns
// on the left edge of every page. Requires all special columns to be on the
// left edge. Never leaves a single orphan column on the last page.
func (s *TTSpec) Split() ([]*TTSpec, error) {
	colsPerPage := s.Aux.MaxColumnsPerPage
	if colsPerPage == 0 {
		return []*TTSpec{s}, nil
	}

	columnCount := len(s.Grid[0])
	firstRegularColumn := -1
	for x := 1; x < columnCount; x++ {
		if !specialColumnNames[strings.ToLower(s.Grid[0][x])] {
			firstRegularColumn = x
			break
		}
	}
	if firstRegularColumn == -1 {
		return nil, &schedule.InputError{
			Message: "failure splitting spec: no regular columns, only special columns",
		}
	}

	numRegularColumns := columnCount - firstRegularColumn
	numPages := (numRegularColumns + colsPerPage - 1) / colsPerPage

	var pages []*TTSpec
	orphan := false
	for i := 0; i < numPages; i++ {
		firstCol := firstRegularColumn + i*colsPerPage
		postFinalCol := firstCol + colsPerPage
		if postFinalCol > columnCount {
			postFinalCol = columnCount
		}

		// Never leave one lonely column for the last page; shift one over.
		if i == numPages-2 && postFinalCol == columnCount-1 {
			postFinalCol--
			orphan = true
		}
		if i == numPages-1 && orphan {
			firstCol--
		}

		grid := make([][]string, len(s.Grid))
		for y, row := range s.Grid {
			newRow := make([]string, 0, firstRegularColumn+(postFinalCol-firstCol))
			newRow = append(newRow, row[:firstRegularColumn]...)
			newRow = append(newRow, row[firstCol:postFinalCol]...)
			grid[y] = newRow
		}
		// Continuation pages lose the full station column context, so force
		// Ar/Dp labels via a page-wide token on the options row, inserting
		// the row when the spec didn't carry one.
		if i > 0 && len(grid) > 1 {
			markerFields := strings.Fields(grid[1][0])
			if len(markerFields) > 0 && isColumnOptionsMarker(markerFields[0]) {
				grid[1][0] = grid[1][0] + " ardp"
			} else {
				optionsRow := make([]string, len(grid[0]))
				optionsRow[0] = "column-options ardp"
				withOptions := make([][]string, 0, len(grid)+1)
				withOptions = append(withOptions, grid[0], optionsRow)
				withOptions = append(withOptions, grid[1:]...)
				grid = withOptions
			}
		}

		aux := &Options{}
		if err := copier.Copy(aux, s.Aux); err != nil {
			return nil, err
		}
		aux.MaxColumnsPerPage = 0
		aux.Heading += fmt.Sprintf(" Page %d/%d", i+1, numPages)
		if aux.AriaLabel != "" {
			aux.AriaLabel += fmt.Sprintf(" page %d", i+1)
		}

		pages = append(pages, &TTSpec{Aux: aux, Grid: grid})
		log.Debug().Int("page", i+1).Int("pages", numPages).Msg("Extracted page spec")
	}
	return pages, nil
}

// GetStationsList returns the station codes in the grid's first column, in
// row order, skipping special row codes.
func (s *TTSpec) GetStationsList() []string {
	var stations []string
	for _, row := range s.Grid[1:] {
		code := row[0]
		if specialRowNames[strings.ToLower(code)] {
			continue
		}
		stations = append(stations, code)
	}
	return stations
}

// GetTrainSpecsList returns the raw train-spec headers (still containing
// "/" and "noheader"), in column order, skipping special column codes.
func (s *TTSpec) GetTrainSpecsList() []string {
	var headers []string
	for _, header := range s.Grid[0][1:] {
		if specialColumnNames[strings.ToLower(header)] {
			continue
		}
		headers = append(headers, header)
	}
	return headers
}
