package season

import "time"

// CutoverHour is the Eastern hour on Tuesday at which the league week rolls over
const CutoverHour = 12

// IsPastWeeklyCutover reports whether Tuesday 12:00 ET has passed within the
// current Sunday-to-Saturday calendar week. Sunday and Monday belong to the
// tail of the previous league week.
func IsPastWeeklyCutover(et EasternTime) bool {
	switch {
	case et.DayOfWeek == time.Tuesday:
		return et.Hour >= CutoverHour
	case et.DayOfWeek > time.Tuesday:
		return true
	default:
		return false
	}
}

// LastCutover returns the most recent Tuesday 12:00 ET at or before now.
func LastCutover(now time.Time) time.Time {
	et := now.In(Eastern)
	offset := int(time.Tuesday - et.Weekday())
	if !IsPastWeeklyCutover(ResolveEasternTime(now)) {
		offset -= 7
	}
	y, m, d := et.Date()
	return time.Date(y, m, d+offset, CutoverHour, 0, 0, 0, Eastern)
}

// CutoverPassedSince reports whether a weekly cutover falls after last and at
// or before now, i.e. the league week containing last is over.
func CutoverPassedSince(last, now time.Time) bool {
	return last.Before(LastCutover(now))
}
