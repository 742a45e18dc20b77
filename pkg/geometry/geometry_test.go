package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapper_TimeToOffset(t *testing.T) {
	mapper := NewMapper(DefaultHourHeight)

	assert.Equal(t, 0.0, mapper.TimeToOffset(0, 0))
	assert.Equal(t, 48.0, mapper.TimeToOffset(1, 0))
	assert.Equal(t, 48.0*9+24.0, mapper.TimeToOffset(9, 30))
	assert.Equal(t, 48.0*23+48.0*59/60, mapper.TimeToOffset(23, 59))
}

func TestMapper_RoundTripSnapsToNearestQuarter(t *testing.T) {
	mapper := NewMapper(DefaultHourHeight)

	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			total := hour*60 + minute
			expected := SnapToInterval(total)
			if expected > 24*60-1 {
				expected = 24*60 - 1
			}
			got := mapper.OffsetToSnappedMinutes(mapper.TimeToOffset(hour, minute))
			assert.Equalf(t, expected, got, "round trip for %02d:%02d", hour, minute)
		}
	}
}

func TestMapper_OffsetToSnappedMinutes_Clamps(t *testing.T) {
	mapper := NewMapper(DefaultHourHeight)

	assert.Equal(t, 0, mapper.OffsetToSnappedMinutes(-100))
	assert.Equal(t, 24*60-1, mapper.OffsetToSnappedMinutes(10000))
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		name                   string
		startHour, startMinute int
		endHour, endMinute     int
		want                   int
	}{
		{"one hour", 9, 0, 10, 0, 60},
		{"same time", 9, 0, 9, 0, 0},
		{"quarter", 14, 15, 14, 30, 15},
		{"wraps past midnight", 23, 30, 0, 15, 45},
		{"wraps a full evening", 22, 0, 6, 0, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DurationMinutes(tt.startHour, tt.startMinute, tt.endHour, tt.endMinute)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapper_CardHeight(t *testing.T) {
	mapper := NewMapper(DefaultHourHeight)

	// 45 minutes past midnight wrap -> 36px, above the minimum
	assert.Equal(t, 36.0, mapper.CardHeight(DurationMinutes(23, 30, 0, 15)))
	// short events are padded to stay clickable
	assert.Equal(t, MinCardHeight, mapper.CardHeight(5))
	assert.Equal(t, MinCardHeight, mapper.CardHeight(0))
	assert.Equal(t, 48.0, mapper.CardHeight(60))
}

func TestSnapToInterval(t *testing.T) {
	assert.Equal(t, 0, SnapToInterval(7))
	assert.Equal(t, 15, SnapToInterval(8))
	assert.Equal(t, 555, SnapToInterval(550))
	assert.Equal(t, 1440, SnapToInterval(1436))
}
