package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minsk(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Minsk")
	require.NoError(t, err)
	return loc
}

func TestCurrent(t *testing.T) {
	now := time.Date(2024, time.March, 17, 12, 0, 0, 0, minsk(t))
	p := Current(now)
	assert.Equal(t, time.March, p.Month)
	assert.Equal(t, 2024, p.Year)
	assert.True(t, p.Equal(3, 2024))
	assert.False(t, p.Equal(4, 2024))
}

func TestSubscriptionEnd(t *testing.T) {
	loc := minsk(t)

	early := time.Date(2024, time.March, 3, 9, 30, 0, 0, loc)
	late := time.Date(2024, time.March, 31, 23, 0, 0, 0, loc)
	want := time.Date(2024, time.April, 5, 23, 59, 59, 0, loc)

	assert.True(t, SubscriptionEnd(early).Equal(want))
	assert.True(t, SubscriptionEnd(late).Equal(want))
}

func TestSubscriptionEndDecember(t *testing.T) {
	loc := minsk(t)
	now := time.Date(2024, time.December, 20, 10, 0, 0, 0, loc)
	want := time.Date(2025, time.January, 5, 23, 59, 59, 0, loc)
	assert.True(t, SubscriptionEnd(now).Equal(want))
}

func TestDeadlines(t *testing.T) {
	loc := minsk(t)
	now := time.Date(2024, time.June, 12, 8, 0, 0, 0, loc)
	assert.True(t, FirstDeadline(now).Equal(time.Date(2024, time.June, 5, 23, 59, 59, 0, loc)))
	assert.True(t, SecondDeadline(now).Equal(time.Date(2024, time.June, 20, 23, 59, 59, 0, loc)))
}

func TestInPaymentWindow(t *testing.T) {
	loc := minsk(t)
	for day, want := range map[int]bool{1: true, 5: true, 6: false, 14: false, 15: true, 20: true, 21: false, 28: false} {
		now := time.Date(2024, time.June, day, 12, 0, 0, 0, loc)
		assert.Equal(t, want, InPaymentWindow(now), "day %d", day)
	}
}
