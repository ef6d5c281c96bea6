package dates_test

import (
	"testing"
	"time"

	"github.com/sahakari/coopcore/internal/utils/dates"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	in := time.Date(2025, 6, 17, 23, 59, 59, 999000000, time.UTC)
	got := dates.Truncate(in)
	assert.Equal(t, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), got)
}

func TestTruncate_ConvertsToUTC(t *testing.T) {
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)
	// 02:00 NPT on the 18th is still the 17th in UTC.
	in := time.Date(2025, 6, 18, 2, 0, 0, 0, kathmandu)
	got := dates.Truncate(in)
	assert.Equal(t, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), got)
}

func TestSameDate(t *testing.T) {
	morning := time.Date(2025, 6, 17, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 17, 20, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)

	assert.True(t, dates.SameDate(morning, evening))
	assert.False(t, dates.SameDate(evening, nextDay))
}

func TestPreviousDate(t *testing.T) {
	assert.Equal(t,
		time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		dates.PreviousDate(time.Date(2025, 6, 17, 14, 30, 0, 0, time.UTC)),
	)
	// Month boundary.
	assert.Equal(t,
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		dates.PreviousDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
	)
}
