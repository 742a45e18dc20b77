package geometry

import (
	"math"
)

const (
	// DefaultHourHeight is the per-hour pixel height of the timeline.
	DefaultHourHeight = 48.0
	// SnapIntervalMinutes is the time grid pointer positions snap to.
	SnapIntervalMinutes = 15
	// MinCardHeight keeps very short events clickable (equivalent to 30
	// minutes at the default hour height).
	MinCardHeight = 24.0

	minutesPerDay = 24 * 60
)

// Mapper converts between points in time and pixel offsets on the fixed
// 24-hour vertical timeline. All functions are pure.
type Mapper struct {
	hourHeight float64
}

func NewMapper(hourHeight float64) Mapper {
	if hourHeight <= 0 {
		hourHeight = DefaultHourHeight
	}
	return Mapper{hourHeight: hourHeight}
}

func (m Mapper) HourHeight() float64 {
	return m.hourHeight
}

// TimeToOffset maps a time of day to its vertical pixel offset.
func (m Mapper) TimeToOffset(hour, minute int) float64 {
	return float64(hour)*m.hourHeight + float64(minute)*m.hourHeight/60
}

// OffsetToSnappedMinutes maps a pixel offset back to minutes since midnight,
// rounded to the nearest snap interval and clamped to [0, 1439].
func (m Mapper) OffsetToSnappedMinutes(offset float64) int {
	minutes := offset * 60 / m.hourHeight
	snapped := int(math.Round(minutes/SnapIntervalMinutes)) * SnapIntervalMinutes
	return clampMinutes(snapped)
}

// SnapToInterval rounds minutes since midnight to the nearest snap interval
// without clamping to the day.
func SnapToInterval(minutes int) int {
	return int(math.Round(float64(minutes)/SnapIntervalMinutes)) * SnapIntervalMinutes
}

// DurationMinutes computes the rendered duration between two times of day.
// An end before the start is interpreted as crossing midnight; multi-day
// events are not supported by the day view and render with the wrapped
// duration.
func DurationMinutes(startHour, startMinute, endHour, endMinute int) int {
	startTotal := startHour*60 + startMinute
	endTotal := endHour*60 + endMinute
	if endTotal < startTotal {
		return (minutesPerDay - startTotal) + endTotal
	}
	return endTotal - startTotal
}

// CardHeight converts a duration to a card height, enforcing the minimum.
func (m Mapper) CardHeight(durationMinutes int) float64 {
	height := float64(durationMinutes) * m.hourHeight / 60
	return math.Max(MinCardHeight, height)
}

func clampMinutes(minutes int) int {
	if minutes < 0 {
		return 0
	}
	if minutes > minutesPerDay-1 {
		return minutesPerDay - 1
	}
	return minutes
}
