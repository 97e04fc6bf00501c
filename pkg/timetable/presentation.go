package timetable

import (
	"strings"

	"github.com/neroden/timetable-kit/pkg/gtfs"
	"github.com/neroden/timetable-kit/pkg/schedule"
)

// Plaintext letters standing in for the renderer's icons.
const (
	baggageLetter      = "G"
	accessibleLetter   = "W"
	inaccessibleLetter = "N"
	busLetter          = "B"
)

// routeNumberPrefixMap covers every GTFS route_type; Amtrak only uses
// train and bus.
var routeNumberPrefixMap = map[int]string{
	1:  "Tram #",
	2:  "Train #",
	3:  "Bus #",
	4:  "Ferry #",
	5:  "Cable Car #",
	6:  "Gondola #",
	7:  "Funicular #",
	11: "Trolleybus #",
	12: "Monorail Train #",
}

func routeNumberPrefix(routeType int) string {
	if prefix, ok := routeNumberPrefixMap[routeType]; ok {
		return prefix
	}
	return "Trip #"
}

// sideBySidePrefix labels a combined header for trains listed side by side,
// like "Bus/Train #s" for a thruway connection feeding a train.
func sideBySidePrefix(routeTypes []int) string {
	if len(routeTypes) == 1 {
		return routeNumberPrefix(routeTypes[0])
	}
	if len(routeTypes) == 2 {
		if routeTypes[0] == 3 && routeTypes[1] == 2 {
			return "Bus/Train #s"
		}
		if routeTypes[0] == 2 && routeTypes[1] == 3 {
			return "Train/Bus #s"
		}
	}

	trains, buses := false, false
	for _, routeType := range routeTypes {
		switch routeType {
		case 2:
			trains = true
		case 3:
			buses = true
		default:
			return "Trip #s"
		}
	}
	switch {
	case trains && buses:
		return "Train/Bus #s"
	case trains:
		return "Train #s"
	case buses:
		return "Bus #s"
	}
	return "Trip #s"
}

var arrowGlyphs = map[string]string{
	"downarrow":      "↓",
	"uparrow":        "↑",
	"rightarrow":     "→",
	"downrightarrow": "↳",
	"rightdownarrow": "↴",
	"uprightarrow":   "↱",
	"rightuparrow":   "⬏",
}

// rdMark returns the one-character annotation for a stop: "R" receive
// only, "D" discharge only, "*" not a regular passenger stop, "F" flag
// stop, "L" may leave early, " " otherwise. The mark goes on one line of a
// two-row cell; the flags say which line this is.
func rdMark(timepoint *gtfs.StopTime, isFirstStop, isLastStop, isSecondLine, isArrivalLine, isDepartureLine bool) string {
	switch {
	case timepoint.DropOffType == 1 && timepoint.PickupType == 0:
		if !isFirstStop && !isArrivalLine {
			return "R"
		}
	case timepoint.DropOffType == 0 && timepoint.PickupType == 1:
		if !isLastStop && !isDepartureLine {
			return "D"
		}
	case timepoint.DropOffType == 1 && timepoint.PickupType == 1:
		if !isSecondLine {
			return "*"
		}
	case timepoint.DropOffType == 2 || timepoint.DropOffType == 3 ||
		timepoint.PickupType == 2 || timepoint.PickupType == 3:
		if !isSecondLine {
			return "F"
		}
	case timepoint.Timepoint == "0":
		if !isArrivalLine {
			return "L"
		}
	}
	return " "
}

// timeString renders one GTFS time with the zone adjustment applied, or
// "---" for stops published with no specific time.
func timeString(raw string, zonediff int, times24h bool) (string, error) {
	if raw == "" {
		return "---", nil
	}
	secs, err := schedule.ParseTimeSecs(raw)
	if err != nil {
		return "", err
	}
	exploded := schedule.ExplodeTime(secs, zonediff)
	if times24h {
		return exploded.String24(), nil
	}
	return exploded.String12(), nil
}

// FormatTimeCell renders a time cell as one or two plaintext lines. The
// two-row form is, at its most elaborate:
//
//	Ar F 9:59P Daily
//	Dp F10:00P WeFrSu
func FormatTimeCell(cell *TimeCell, times24h bool) (string, error) {
	departureStr, err := timeString(cell.Timepoint.DepartureTime, cell.ZoneDiff, times24h)
	if err != nil {
		return "", err
	}
	arrivalStr, err := timeString(cell.Timepoint.ArrivalTime, cell.ZoneDiff, times24h)
	if err != nil {
		return "", err
	}

	departureDay := ""
	arrivalDay := ""
	if cell.DepartureDayString != "" {
		departureDay = " " + cell.DepartureDayString
	}
	if cell.ArrivalDayString != "" {
		arrivalDay = " " + cell.ArrivalDayString
	}

	arStr, dpStr, ardpSpacer := "", "", ""
	if cell.UseArDp {
		arStr = "Ar "
		dpStr = "Dp "
		ardpSpacer = "   "
	}

	receiveOnly := cell.IsFirstStop ||
		(cell.Timepoint.DropOffType == 1 && cell.Timepoint.PickupType == 0)
	dischargeOnly := cell.IsLastStop ||
		(cell.Timepoint.PickupType == 1 && cell.Timepoint.DropOffType == 0)

	baggageStr := ""
	if cell.UseBaggageIcon {
		baggageStr = " "
		if cell.HasBaggage {
			baggageStr = baggageLetter
		}
	}
	busStr := ""
	if cell.UseBusIcon {
		busStr = " "
		if cell.IsBus {
			busStr = busLetter
		}
	}

	if !cell.TwoRow {
		rd := rdMark(&cell.Timepoint, cell.IsFirstStop, cell.IsLastStop, false, false, false)
		if cell.NoRD {
			rd = ""
		}

		ardp := ""
		if cell.UseArDp {
			ardp = ardpSpacer
		}
		if cell.IsFirstStop {
			ardp = dpStr
		} else if cell.IsLastStop {
			ardp = arStr
		}

		timeStr := departureStr + departureDay
		if dischargeOnly {
			timeStr = arrivalStr + arrivalDay
		}
		return ardp + rd + timeStr + baggageStr + busStr, nil
	}

	// Two-row form. A stop with no dwell prints its single time on the
	// departure line only.
	noDwell := cell.Timepoint.DepartureTime == cell.Timepoint.ArrivalTime

	blankRD := ""
	if !cell.NoRD {
		blankRD = " "
	}

	arrivalLine := ""
	switch {
	case cell.IsFirstStop:
		// The full Ar/Dp pair is elsewhere on this page; just print Dp.
	case receiveOnly || (noDwell && !dischargeOnly):
		arrivalLine = strings.TrimRight(arStr+blankRD, " ")
	default:
		rd := rdMark(&cell.Timepoint, cell.IsFirstStop, cell.IsLastStop,
			cell.Reverse, true, false)
		if cell.NoRD {
			rd = ""
		}
		arrivalLine = arStr + rd + arrivalStr + arrivalDay + baggageStr + busStr
	}

	departureLine := ""
	switch {
	case cell.IsLastStop:
	case dischargeOnly:
		departureLine = strings.TrimRight(dpStr+blankRD, " ")
	default:
		rd := rdMark(&cell.Timepoint, cell.IsFirstStop, cell.IsLastStop,
			cell.Reverse, false, true)
		if cell.NoRD {
			rd = ""
		}
		departureLine = dpStr + rd + departureStr + departureDay + baggageStr + busStr
	}

	if cell.Reverse {
		return departureLine + "\n" + arrivalLine, nil
	}
	return arrivalLine + "\n" + departureLine, nil
}

// CellText renders any resolved cell as plaintext, possibly multi-line.
func CellText(cell ResolvedCell, times24h bool) (string, error) {
	switch cell.Kind {
	case CellTime:
		return FormatTimeCell(cell.Time, times24h)
	case CellArrow:
		if glyph, ok := arrowGlyphs[cell.Text]; ok {
			return glyph, nil
		}
		return cell.Text, nil
	case CellAccess:
		switch cell.Text {
		case "accessible":
			return accessibleLetter, nil
		case "inaccessible":
			return inaccessibleLetter, nil
		}
		return "", nil
	case CellBlank, CellServices:
		return "", nil
	}
	return cell.Text, nil
}

// RenderText renders a filled timetable as an aligned plaintext table, the
// renderer-agnostic debug surface behind the generate command.
func RenderText(t *Timetable) (string, error) {
	times24h := t.Spec.Aux.Times24h

	// Render every cell to lines first, then size the columns.
	texts := make([][][]string, t.RowCount())
	rowHeights := make([]int, t.RowCount())
	colWidths := make([]int, t.ColCount())
	for y := range t.Cells {
		texts[y] = make([][]string, t.ColCount())
		rowHeights[y] = 1
		for x, cell := range t.Cells[y] {
			text, err := CellText(cell, times24h)
			if err != nil {
				return "", err
			}
			lines := strings.Split(text, "\n")
			texts[y][x] = lines
			if len(lines) > rowHeights[y] {
				rowHeights[y] = len(lines)
			}
			for _, line := range lines {
				if len([]rune(line)) > colWidths[x] {
					colWidths[x] = len([]rune(line))
				}
			}
		}
	}

	var b strings.Builder
	for y := range texts {
		for line := 0; line < rowHeights[y]; line++ {
			for x := range texts[y] {
				cellLine := ""
				if line < len(texts[y][x]) {
					cellLine = texts[y][x][line]
				}
				b.WriteString(pad(cellLine, colWidths[x]))
				if x < len(texts[y])-1 {
					b.WriteString("  ")
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// RenderDocument renders every page of a document, separated by blank
// lines, with the shared title first. Each page carries its own top_text
// and bottom_text around the grid.
func RenderDocument(doc *Document) (string, error) {
	var b strings.Builder
	if doc.Title != "" {
		b.WriteString(doc.Title + "\n\n")
	}
	for i, page := range doc.Pages {
		if i > 0 {
			b.WriteString("\n")
		}
		if heading := page.Spec.Aux.Heading; heading != "" {
			b.WriteString(heading + "\n")
		}
		if topText := page.Spec.Aux.TopText; topText != "" {
			b.WriteString(topText + "\n")
		}
		text, err := RenderText(page)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		if bottomText := page.Spec.Aux.BottomText; bottomText != "" {
			b.WriteString(bottomText + "\n")
		}
	}
	return b.String(), nil
}

func pad(text string, width int) string {
	deficit := width - len([]rune(text))
	if deficit <= 0 {
		return text
	}
	return text + strings.Repeat(" ", deficit)
}
