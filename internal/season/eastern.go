// Package season answers "which NFL week is it" from stored games and the
// league's Tuesday-noon Eastern cutover.
package season

import (
	"time"
	_ "time/tzdata" // containers may ship without a zoneinfo database
)

// Eastern is the league's reference zone. Offsets come from the tz database,
// so daylight-saving transitions are handled per instant.
var Eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// EasternTime holds wall-clock fields as read in America/New_York
type EasternTime struct {
	DayOfWeek time.Weekday
	Hour      int
	Minute    int
}

// ResolveEasternTime converts an instant into Eastern wall-clock fields
func ResolveEasternTime(t time.Time) EasternTime {
	et := t.In(Eastern)
	return EasternTime{
		DayOfWeek: et.Weekday(),
		Hour:      et.Hour(),
		Minute:    et.Minute(),
	}
}
