package weekly

import "time"

// DayLabels maps ISO day numbers (Monday=1) to short display labels.
var DayLabels = map[int]string{
	1: "Mon",
	2: "Tue",
	3: "Wed",
	4: "Thu",
	5: "Fri",
	6: "Sat",
	7: "Sun",
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// WeekKey formats the Monday of the week containing t as the storage key.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format("2006-01-02")
}
