package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeSecs parses a GTFS HH:MM:SS string into seconds past midnight of
// the service day. Hours may exceed 24 for next-day arrivals.
func ParseTimeSecs(timestr string) (int, error) {
	parts := strings.Split(timestr, ":")
	if len(parts) != 3 {
		return 0, &InputError{Message: fmt.Sprintf("time %q did not parse", timestr)}
	}

	hours, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	mins, err2 := strconv.Atoi(parts[1])
	secs, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, &InputError{Message: fmt.Sprintf("time %q did not parse", timestr)}
	}

	return hours*3600 + mins*60 + secs, nil
}

// TimeOfDay is a GTFS time exploded into display components. Day is the
// offset from the service day, so a 25:10 departure has Day 1, Hour24 1.
type TimeOfDay struct {
	Day    int
	Hour24 int
	Hour   int
	Min    int
	Sec    int
	PM     bool
}

// ExplodeTime converts seconds past service-day midnight into a TimeOfDay,
// applying a whole-hour timezone adjustment first. Negative hours (possible
// after the adjustment) roll back into the previous day.
func ExplodeTime(secs int, zonediff int) TimeOfDay {
	longhours := secs/3600 + zonediff
	mins := (secs % 3600) / 60
	seconds := secs % 60

	days := floorDiv(longhours, 24)
	hours24 := longhours - days*24
	hours := hours24 % 12

	return TimeOfDay{
		Day:    days,
		Hour24: hours24,
		Hour:   hours,
		Min:    mins,
		Sec:    seconds,
		PM:     hours24 >= 12,
	}
}

// String12 renders a fixed-width 12-hour time like " 8:00A" or "12:30P".
func (t TimeOfDay) String12() string {
	hour := t.Hour
	if hour == 0 {
		hour = 12
	}
	suffix := "A"
	if t.PM {
		suffix = "P"
	}
	return fmt.Sprintf("%2d:%02d%s", hour, t.Min, suffix)
}

// String24 renders a fixed-width 24-hour time like " 8:00" or "23:59".
func (t TimeOfDay) String24() string {
	return fmt.Sprintf("%2d:%02d", t.Hour24, t.Min)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ZoneDiff returns the whole-hour offset to add to a time in baseZone to get
// the local time in localZone, evaluated on the reference date (this matters
// for zones which skip daylight saving, like Arizona).
func ZoneDiff(localZone string, baseZone string, referenceDate string) (int, error) {
	if localZone == "" || localZone == baseZone {
		return 0, nil
	}

	local, err := time.LoadLocation(localZone)
	if err != nil {
		return 0, err
	}
	base, err := time.LoadLocation(baseZone)
	if err != nil {
		return 0, err
	}

	day, err := time.Parse("20060102", referenceDate)
	if err != nil {
		return 0, &InputError{Message: fmt.Sprintf("reference date %q did not parse", referenceDate)}
	}

	// Compare the UTC offsets in force at noon on the reference date.
	noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	_, localOffset := noon.In(local).Zone()
	_, baseOffset := noon.In(base).Zone()

	diffSecs := localOffset - baseOffset
	if diffSecs%3600 != 0 {
		return 0, &InputError{Message: "timezone difference is not a whole number of hours"}
	}
	return diffSecs / 3600, nil
}

// TimezoneAbbrev maps an IANA zone name to the short form printed in a
// timezone column. North American zones only, matching the agencies covered.
var TimezoneAbbrev = map[string]string{
	"America/New_York":    "ET",
	"America/Chicago":     "CT",
	"America/Denver":      "MT",
	"America/Phoenix":     "MST",
	"America/Los_Angeles": "PT",
	"America/Halifax":     "AT",
	"America/Toronto":     "ET",
	"America/Winnipeg":    "CT",
	"America/Regina":      "CST",
	"America/Edmonton":    "MT",
	"America/Vancouver":   "PT",
}
