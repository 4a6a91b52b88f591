package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayUsesUTCCalendarDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 02:00 in Jakarta on the 5th is still the 4th in UTC.
	ts := time.Date(2026, 3, 5, 2, 0, 0, 0, jakarta)

	assert.Equal(t, "2026-03-04", Day(ts))
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, "2026-03-01", Day(d.AddDate(0, 0, 1)))

	_, err = ParseDay("28/02/2026")
	assert.Error(t, err)
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)
	c := NewFakeClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(time.Hour)
	assert.Equal(t, "2026-01-02", Day(c.Now()))
}
