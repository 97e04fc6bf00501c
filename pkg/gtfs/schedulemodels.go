package gtfs

type Agency struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
	Language string `csv:"agency_lang"`
	Phone    string `csv:"agency_phone"`
	FareURL  string `csv:"agency_fare_url"`
	Email    string `csv:"agency_email"`
}

type Stop struct {
	ID           string  `csv:"stop_id"`
	Code         string  `csv:"stop_code"`
	Name         string  `csv:"stop_name"`
	Description  string  `csv:"stop_desc"`
	Latitude     float64 `csv:"stop_lat"`
	Longitude    float64 `csv:"stop_lon"`
	ZoneID       string  `csv:"zone_id"`
	URL          string  `csv:"stop_url"`
	Type         string  `csv:"location_type"`
	Parent       string  `csv:"parent_station"`
	Timezone     string  `csv:"stop_timezone"`
	Wheelchair   string  `csv:"wheelchair_boarding"`
	LevelID      string  `csv:"level_id"`
	PlatformCode string  `csv:"platform_code"`
}

type Route struct {
	ID                string `csv:"route_id"`
	AgencyID          string `csv:"agency_id"`
	ShortName         string `csv:"route_short_name"`
	LongName          string `csv:"route_long_name"`
	Description       string `csv:"route_desc"`
	URL               string `csv:"route_url"`
	Colour            string `csv:"route_color"`
	TextColour        string `csv:"route_text_color"`
	NetworkID         string `csv:"network_id"`
	Type              int    `csv:"route_type"`
	SortOrder         int    `csv:"route_sort_order"`
	ContinuousPickup  int    `csv:"continuous_pickup"`
	ContinuousDropOff int    `csv:"continuous_drop_off"`
}

type Trip struct {
	RouteID              string `csv:"route_id"`
	ServiceID            string `csv:"service_id"`
	ID                   string `csv:"trip_id"`
	Headsign             string `csv:"trip_headsign"`
	ShortName            string `csv:"trip_short_name"`
	BlockID              string `csv:"block_id"`
	ShapeID              string `csv:"shape_id"`
	WheelchairAccessible int8   `csv:"wheelchair_accessible"`
	BikesAllowed         int8   `csv:"bikes_allowed"`
	DirectionID          bool   `csv:"direction_id"`
}

type StopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopHeadsign  string `csv:"stop_headsign"`
	StopSequence  int    `csv:"stop_sequence"`
	PickupType    int8   `csv:"pickup_type"`
	DropOffType   int8   `csv:"drop_off_type"`
	Timepoint     string `csv:"timepoint"`
}

// GTFSDays lists the weekday column names of calendar.txt, Monday first.
var GTFSDays = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

type Calendar struct {
	ServiceID string `csv:"service_id"`
	Monday    int    `csv:"monday"`
	Tuesday   int    `csv:"tuesday"`
	Wednesday int    `csv:"wednesday"`
	Thursday  int    `csv:"thursday"`
	Friday    int    `csv:"friday"`
	Saturday  int    `csv:"saturday"`
	Sunday    int    `csv:"sunday"`
	Start     string `csv:"start_date"`
	End       string `csv:"end_date"`
}

// DayVector returns the running days as a 7-element 0/1 vector, Monday first.
func (c *Calendar) DayVector() [7]int {
	return [7]int{c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday}
}

// RunsOn reports whether the calendar includes the given GTFS day name.
func (c *Calendar) RunsOn(day string) bool {
	switch day {
	case "monday":
		return c.Monday == 1
	case "tuesday":
		return c.Tuesday == 1
	case "wednesday":
		return c.Wednesday == 1
	case "thursday":
		return c.Thursday == 1
	case "friday":
		return c.Friday == 1
	case "saturday":
		return c.Saturday == 1
	case "sunday":
		return c.Sunday == 1
	}
	return false
}

func (c *Calendar) GetRunningDays() []string {
	days := []string{}

	for _, day := range GTFSDays {
		if c.RunsOn(day) {
			days = append(days, day)
		}
	}

	return days
}

type CalendarDate struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int    `csv:"exception_type"`
}
