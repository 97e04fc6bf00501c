package schedule

import (
	"fmt"
	"time"

	"github.com/neroden/timetable-kit/pkg/gtfs"
)

// WeekdayName returns the lowercase GTFS day name for a YYYYMMDD date.
func WeekdayName(date string) (string, error) {
	day, err := time.Parse("20060102", date)
	if err != nil {
		return "", &InputError{Message: fmt.Sprintf("date %q did not parse", date)}
	}
	// time.Weekday starts on Sunday; GTFSDays starts on Monday.
	return gtfs.GTFSDays[(int(day.Weekday())+6)%7], nil
}

// CalendarActiveOn reports whether the calendar covers the given date: the
// date must fall inside the validity range and on a running weekday.
// calendar_dates.txt exceptions are deliberately not consulted; see the
// package documentation.
func CalendarActiveOn(calendar *gtfs.Calendar, date string) (bool, error) {
	if date < calendar.Start || date > calendar.End {
		return false, nil
	}
	day, err := WeekdayName(date)
	if err != nil {
		return false, err
	}
	return calendar.RunsOn(day), nil
}

// The special cases avoid ugly concatenated strings for the common
// patterns: full weeks, single gaps, and consecutive runs.
var dayStringSpecialCases = map[[7]int]string{
	{1, 1, 1, 1, 1, 1, 1}: "Daily",
	// Missing only one day
	{1, 1, 1, 1, 1, 1, 0}: "Mo-Sa",
	{0, 1, 1, 1, 1, 1, 1}: "Tu-Su",
	{1, 0, 1, 1, 1, 1, 1}: "We-Mo",
	{1, 1, 0, 1, 1, 1, 1}: "Th-Tu",
	{1, 1, 1, 0, 1, 1, 1}: "Fr-We",
	{1, 1, 1, 1, 0, 1, 1}: "Sa-Th",
	{1, 1, 1, 1, 1, 0, 1}: "Su-Fr",
	// Missing two consecutive days (including Mo-Fr)
	{1, 1, 1, 1, 1, 0, 0}: "Mo-Fr",
	{0, 1, 1, 1, 1, 1, 0}: "Tu-Sa",
	{0, 0, 1, 1, 1, 1, 1}: "We-Su",
	{1, 0, 0, 1, 1, 1, 1}: "Th-Mo",
	{1, 1, 0, 0, 1, 1, 1}: "Fr-Tu",
	{1, 1, 1, 0, 0, 1, 1}: "Sa-We",
	{1, 1, 1, 1, 0, 0, 1}: "Su-Th",
	// Missing three consecutive days
	{1, 1, 1, 1, 0, 0, 0}: "Mo-Th",
	{0, 1, 1, 1, 1, 0, 0}: "Tu-Fr",
	{0, 0, 1, 1, 1, 1, 0}: "We-Sa",
	{0, 0, 0, 1, 1, 1, 1}: "Th-Su",
	{1, 0, 0, 0, 1, 1, 1}: "Fr-Mo",
	{1, 1, 0, 0, 0, 1, 1}: "Sa-Tu",
	{1, 1, 1, 0, 0, 0, 1}: "Su-We",
	// Missing four consecutive days
	{1, 1, 1, 0, 0, 0, 0}: "Mo-We",
	{0, 1, 1, 1, 0, 0, 0}: "Tu-Th",
	{0, 0, 1, 1, 1, 0, 0}: "We-Fr",
	{0, 0, 0, 1, 1, 1, 0}: "Th-Sa",
	{0, 0, 0, 0, 1, 1, 1}: "Fr-Su",
	{1, 0, 0, 0, 0, 1, 1}: "Sa-Mo",
	{1, 1, 0, 0, 0, 0, 1}: "Su-Tu",
	// Only running two consecutive days
	{1, 1, 0, 0, 0, 0, 0}: "MoTu",
	{0, 1, 1, 0, 0, 0, 0}: "TuWe",
	{0, 0, 1, 1, 0, 0, 0}: "WeTh",
	{0, 0, 0, 1, 1, 0, 0}: "ThFr",
	{0, 0, 0, 0, 1, 1, 0}: "FrSa",
	{0, 0, 0, 0, 0, 1, 1}: "SaSu",
	{1, 0, 0, 0, 0, 0, 1}: "SuMo",
	// Only running on one day a week
	{1, 0, 0, 0, 0, 0, 0}: "Mo",
	{0, 1, 0, 0, 0, 0, 0}: "Tu",
	{0, 0, 1, 0, 0, 0, 0}: "We",
	{0, 0, 0, 1, 0, 0, 0}: "Th",
	{0, 0, 0, 0, 1, 0, 0}: "Fr",
	{0, 0, 0, 0, 0, 1, 0}: "Sa",
	{0, 0, 0, 0, 0, 0, 1}: "Su",
}

var dayAbbrevs = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// DayString renders a calendar's running days as "Daily", "Mo-Fr", "MoWeFr"
// and so on. Offset shifts the days for stops reached more than 24 hours
// after the initial departure; timezone changes can make it -1.
func DayString(calendar *gtfs.Calendar, offset int) (string, error) {
	offset = ((offset % 7) + 7) % 7

	vector := calendar.DayVector()

	// Rotate right by offset so the lookup sees the shifted week.
	var rotated [7]int
	for i := 0; i < 7; i++ {
		rotated[(i+offset)%7] = vector[i]
	}
	if daystring, ok := dayStringSpecialCases[rotated]; ok {
		return daystring, nil
	}

	// Non-consecutive pattern such as MoWeFr. Keep the original day order
	// and shift each abbreviation individually.
	daystring := ""
	for i := 0; i < 7; i++ {
		if vector[i] == 1 {
			daystring += dayAbbrevs[(i+offset)%7]
		}
	}
	if daystring == "" {
		return "", &InputError{Message: fmt.Sprintf("calendar for %q has no days of operation", calendar.ServiceID)}
	}
	return daystring, nil
}
