package cutoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFor(t *testing.T) {
	assert.Equal(t, First, For(date(2026, 3, 1)))
	assert.Equal(t, First, For(date(2026, 3, 15)))
	assert.Equal(t, Second, For(date(2026, 3, 16)))
	assert.Equal(t, Second, For(date(2026, 3, 31)))
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 31, LastDayOfMonth(date(2026, 1, 20)))
	assert.Equal(t, 28, LastDayOfMonth(date(2026, 2, 1)))
	assert.Equal(t, 29, LastDayOfMonth(date(2028, 2, 10)))
	assert.Equal(t, 30, LastDayOfMonth(date(2026, 4, 30)))
}

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC), date(2026, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 1), p.Start)

	_, err = NewPeriod(date(2026, 3, 15), date(2026, 3, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	single, err := NewPeriod(date(2026, 3, 4), date(2026, 3, 4))
	require.NoError(t, err)
	assert.Len(t, single.Days(), 1)
}

func TestPeriod_IsFullMonth(t *testing.T) {
	assert.True(t, Period{date(2026, 3, 1), date(2026, 3, 31)}.IsFullMonth())
	assert.True(t, Period{date(2026, 2, 1), date(2026, 2, 28)}.IsFullMonth())
	assert.False(t, Period{date(2026, 3, 1), date(2026, 3, 30)}.IsFullMonth())
	assert.False(t, Period{date(2026, 3, 2), date(2026, 3, 31)}.IsFullMonth())
	assert.False(t, Period{date(2026, 1, 1), date(2026, 2, 28)}.IsFullMonth())
	assert.False(t, FirstHalf(date(2026, 3, 9)).IsFullMonth())
}

func TestHalves(t *testing.T) {
	first := FirstHalf(date(2026, 2, 20))
	assert.Equal(t, Period{date(2026, 2, 1), date(2026, 2, 15)}, first)
	assert.Equal(t, First, first.Cutoff())
	assert.False(t, first.EndsInSecondHalf())

	second := SecondHalf(date(2026, 2, 3))
	assert.Equal(t, Period{date(2026, 2, 16), date(2026, 2, 28)}, second)
	assert.Equal(t, Second, second.Cutoff())
	assert.True(t, second.EndsInSecondHalf())
	assert.Equal(t, first, second.Sibling())
}

func TestPrevious(t *testing.T) {
	assert.Equal(t, Period{date(2026, 3, 1), date(2026, 3, 15)}, Previous(date(2026, 3, 16)))
	assert.Equal(t, Period{date(2026, 2, 16), date(2026, 2, 28)}, Previous(date(2026, 3, 1)))
	assert.Equal(t, Period{date(2025, 12, 16), date(2025, 12, 31)}, Previous(date(2026, 1, 1)))
}

func TestPeriod_Covers(t *testing.T) {
	month := Period{date(2026, 3, 1), date(2026, 3, 31)}
	assert.True(t, month.Covers(month.Sibling()))
	assert.False(t, SecondHalf(date(2026, 3, 1)).Covers(month.Sibling()))
	assert.True(t, month.Contains(time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, month.Contains(date(2026, 4, 1)))
}

func TestExpectedWorkingDays(t *testing.T) {
	// March 2026 starts on a Sunday.
	cases := []struct {
		period Period
		want   int
	}{
		{Period{date(2026, 3, 1), date(2026, 3, 15)}, 12},
		{Period{date(2026, 3, 16), date(2026, 3, 31)}, 14},
		{Period{date(2026, 3, 1), date(2026, 3, 31)}, 26},
		{Period{date(2026, 2, 16), date(2026, 2, 28)}, 12},
		{Period{date(2026, 3, 1), date(2026, 3, 1)}, 0},
		{Period{date(2026, 3, 2), date(2026, 3, 2)}, 1},
	}
	for _, c := range cases {
		got, err := c.period.ExpectedWorkingDays()
		require.NoError(t, err, c.period.String())
		assert.Equal(t, c.want, got, c.period.String())
	}
}
