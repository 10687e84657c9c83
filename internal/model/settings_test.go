package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaySettingWindow(t *testing.T) {
	ds := DaySetting{Day: 2, OpenHours: "10:00", CloseHours: "21:30"}
	date := time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)

	open, close, err := ds.Window(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC), open)
	assert.Equal(t, time.Date(2024, 6, 5, 21, 30, 0, 0, time.UTC), close)
}

func TestDaySettingWindowBadHours(t *testing.T) {
	ds := DaySetting{OpenHours: "25:00", CloseHours: "21:00"}
	_, _, err := ds.Window(time.Now())
	assert.Error(t, err)
}

func TestWeekdayMondayBased(t *testing.T) {
	// 2024-06-03 是周一
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, Weekday(monday))
	assert.Equal(t, 2, Weekday(monday.AddDate(0, 0, 2)))
	assert.Equal(t, 6, Weekday(monday.AddDate(0, 0, 6)))
}
