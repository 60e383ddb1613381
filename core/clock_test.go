package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			"same day",
			time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC),
			0,
		},
		{
			"next day across midnight",
			time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			1,
		},
		{
			"a week apart",
			time.Date(2026, 3, 17, 8, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
			7,
		},
		{
			"month boundary",
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
			1,
		},
		{
			"negative when from precedes to",
			time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
			-1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.DaysBetween(tt.from, tt.to))
		})
	}
}

func TestFormatParseDate(t *testing.T) {
	d := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-10", core.FormatDate(d))

	parsed, err := core.ParseDate("2026-03-10")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), parsed)

	_, err = core.ParseDate("10/03/2026")
	assert.Error(t, err)
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "hello", core.CleanString("  hello\t"))
	assert.Equal(t, "hello", core.CleanString(" HeLLo ", true))
	assert.Equal(t, "HeLLo", core.CleanString(" HeLLo "))
}
