package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveEndTime(t *testing.T) {
	cases := []struct {
		name  string
		start string
		want  string
	}{
		{"on the hour", "09:00", "09:30"},
		{"half past", "09:30", "10:00"},
		{"hour rollover", "09:45", "10:15"},
		{"early morning", "00:00", "00:30"},
		{"last slot of the day", "23:30", "00:00"},
		{"midnight wrap", "23:45", "00:15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, err := ParseTimeOfDay(tc.start)
			require.NoError(t, err)
			assert.Equal(t, tc.want, DeriveEndTime(start).String())
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := ParseTimeOfDay("14:15")
		require.NoError(t, err)
		assert.Equal(t, TimeOfDay{Hour: 14, Minute: 15}, got)
		assert.Equal(t, "14:15", got.String())
	})

	for _, bad := range []string{"", "junk", "24:00", "09:60", "9h30", "12:34:56", "-1:00"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseTimeOfDay(bad)
			require.Error(t, err)
			var timeErr *InvalidTimeError
			assert.True(t, errors.As(err, &timeErr))
		})
	}
}

func TestCrossesMidnight(t *testing.T) {
	cases := []struct {
		start string
		want  bool
	}{
		{"00:00", false},
		{"09:45", false},
		{"23:30", false},
		{"23:31", true},
		{"23:45", true},
	}
	for _, tc := range cases {
		start, err := ParseTimeOfDay(tc.start)
		require.NoError(t, err)
		assert.Equal(t, tc.want, CrossesMidnight(start), "start %s", tc.start)
	}
}

func TestOverlaps(t *testing.T) {
	slot := func(start string) Interval {
		tod, err := ParseTimeOfDay(start)
		require.NoError(t, err)
		return NewSlot(tod)
	}

	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", slot("09:00"), slot("09:00"), true},
		{"partial overlap", slot("09:00"), slot("09:15"), true},
		{"adjacent slots do not overlap", slot("09:00"), slot("09:30"), false},
		{"disjoint", slot("09:00"), slot("11:00"), false},
		{"wrapped end still overlaps", slot("23:30"), slot("23:30"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.want, Overlaps(tc.b, tc.a))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", d.Format(dateLayout))

	for _, bad := range []string{"", "01-07-2025", "2025-13-01", "2025-07-32", "tomorrow"} {
		_, err := ParseDate(bad)
		require.Error(t, err, "input %q", bad)
		var validationErr *ValidationError
		assert.True(t, errors.As(err, &validationErr))
	}
}
