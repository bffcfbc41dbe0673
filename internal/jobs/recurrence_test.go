package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestNextOccurrenceSameYear(t *testing.T) {
	from := time.Date(2028, time.May, 5, 12, 0, 0, 0, time.UTC)

	got := NextOccurrence(time.June, 15, time.UTC, from)
	assert.Equal(t, time.Date(2028, time.June, 15, 9, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrenceRollsToNextYear(t *testing.T) {
	from := time.Date(2028, time.May, 5, 12, 0, 0, 0, time.UTC)

	got := NextOccurrence(time.January, 10, time.UTC, from)
	assert.Equal(t, time.Date(2029, time.January, 10, 9, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrenceStrictlyAfter(t *testing.T) {
	// The candidate equal to from has already passed; advance a year.
	from := time.Date(2028, time.June, 15, 9, 0, 0, 0, time.UTC)

	got := NextOccurrence(time.June, 15, time.UTC, from)
	assert.Equal(t, time.Date(2029, time.June, 15, 9, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrenceLocalWallClock(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	from := time.Date(2028, time.May, 5, 0, 0, 0, 0, time.UTC)

	got := NextOccurrence(time.July, 4, ny, from)
	assert.Equal(t, time.Date(2028, time.July, 4, 9, 0, 0, 0, ny), got)
	assert.Equal(t, 9, got.In(ny).Hour())
}

func TestNextOccurrenceLeapAnchorNonLeapYear(t *testing.T) {
	// Anchor Feb 29, 2029 is not a leap year: substitute Feb 28.
	from := time.Date(2028, time.May, 5, 0, 0, 0, 0, time.UTC)

	got := NextOccurrence(time.February, 29, time.UTC, from)
	assert.Equal(t, time.Date(2029, time.February, 28, 9, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrenceLeapAnchorLeapYear(t *testing.T) {
	// The anchor is preserved: 2032 is a leap year, so Feb 29 returns.
	from := time.Date(2031, time.June, 1, 0, 0, 0, 0, time.UTC)

	got := NextOccurrence(time.February, 29, time.UTC, from)
	assert.Equal(t, time.Date(2032, time.February, 29, 9, 0, 0, 0, time.UTC), got)
}

func TestNextOccurrenceLeapAnchorSequence(t *testing.T) {
	// Chaining from each result: 28th in non-leap years, 29th in leap years.
	from := time.Date(2028, time.March, 1, 0, 0, 0, 0, time.UTC)

	want := []time.Time{
		time.Date(2029, time.February, 28, 9, 0, 0, 0, time.UTC),
		time.Date(2030, time.February, 28, 9, 0, 0, 0, time.UTC),
		time.Date(2031, time.February, 28, 9, 0, 0, 0, time.UTC),
		time.Date(2032, time.February, 29, 9, 0, 0, 0, time.UTC),
		time.Date(2033, time.February, 28, 9, 0, 0, 0, time.UTC),
	}
	for _, w := range want {
		got := NextOccurrence(time.February, 29, time.UTC, from)
		require.Equal(t, w, got)
		from = got
	}
}

func TestNextOccurrenceAnnualProgression(t *testing.T) {
	// Feeding each result back as "from" yields exactly one year later at
	// the same local wall clock, for any non-Feb-29 anchor and zone.
	zones := []*time.Location{
		time.UTC,
		mustLoad(t, "America/New_York"),
		mustLoad(t, "Asia/Tokyo"),
		mustLoad(t, "Australia/Sydney"),
	}
	anchors := []struct {
		month time.Month
		day   int
	}{
		{time.January, 1},
		{time.March, 31},
		{time.August, 15},
		{time.December, 31},
	}

	for _, loc := range zones {
		for _, a := range anchors {
			prev := NextOccurrence(a.month, a.day, loc, time.Date(2028, time.May, 5, 0, 0, 0, 0, time.UTC))
			for i := 0; i < 10; i++ {
				next := NextOccurrence(a.month, a.day, loc, prev)
				local := next.In(loc)
				require.Equal(t, prev.In(loc).Year()+1, local.Year())
				require.Equal(t, a.month, local.Month())
				require.Equal(t, a.day, local.Day())
				require.Equal(t, 9, local.Hour())
				require.True(t, next.After(prev))
				prev = next
			}
		}
	}
}

func TestNextOccurrenceDeterministic(t *testing.T) {
	from := time.Date(2028, time.May, 5, 0, 0, 0, 0, time.UTC)
	first := NextOccurrence(time.February, 29, time.UTC, from)
	second := NextOccurrence(time.February, 29, time.UTC, from)
	assert.Equal(t, first, second)
}
