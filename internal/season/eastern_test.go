package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveEasternTime_StandardTime(t *testing.T) {
	// 17:00 UTC on the first Tuesday after DST ends is noon EST
	et := ResolveEasternTime(time.Date(2025, 11, 4, 17, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Tuesday, et.DayOfWeek)
	assert.Equal(t, 12, et.Hour)
	assert.Equal(t, 0, et.Minute)
}

func TestResolveEasternTime_DaylightTime(t *testing.T) {
	et := ResolveEasternTime(time.Date(2025, 7, 1, 16, 45, 0, 0, time.UTC))

	assert.Equal(t, time.Tuesday, et.DayOfWeek)
	assert.Equal(t, 12, et.Hour)
	assert.Equal(t, 45, et.Minute)
}

func TestResolveEasternTime_SpringForward(t *testing.T) {
	before := ResolveEasternTime(time.Date(2025, 3, 9, 6, 30, 0, 0, time.UTC))
	after := ResolveEasternTime(time.Date(2025, 3, 9, 7, 30, 0, 0, time.UTC))

	assert.Equal(t, 1, before.Hour)
	assert.Equal(t, 3, after.Hour, "02:xx does not exist on the spring-forward day")
	assert.Equal(t, time.Sunday, after.DayOfWeek)
}

func TestResolveEasternTime_DayBoundary(t *testing.T) {
	// 03:00 UTC Wednesday is still Tuesday evening in New York
	et := ResolveEasternTime(time.Date(2025, 9, 24, 3, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Tuesday, et.DayOfWeek)
	assert.Equal(t, 23, et.Hour)
}

func TestResolveEasternTime_IgnoresInputZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2025, 11, 5, 2, 0, 0, 0, tokyo) // 2025-11-04T17:00Z

	assert.Equal(t, ResolveEasternTime(instant.UTC()), ResolveEasternTime(instant))
}
