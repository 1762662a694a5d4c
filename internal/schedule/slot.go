package schedule

import (
	"fmt"
	"time"
)

// SlotDuration is the fixed length of every appointment slot.
const SlotDuration = 30 * time.Minute

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TimeOfDay is a naive wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an HH:MM value. Anything outside 00:00-23:59 is
// rejected with an InvalidTimeError.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return TimeOfDay{}, &InvalidTimeError{Value: s}
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns t as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Add advances t by d, wrapping around midnight.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	total := (t.Minutes() + int(d.Minutes())) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// DeriveEndTime returns the end of the slot beginning at start. The clock
// wraps at midnight (23:45 -> 00:15); callers that need a slot to stay
// within one calendar date must check CrossesMidnight first.
func DeriveEndTime(start TimeOfDay) TimeOfDay {
	return start.Add(SlotDuration)
}

// CrossesMidnight reports whether a slot beginning at start would spill
// into the next calendar date.
func CrossesMidnight(start TimeOfDay) bool {
	return start.Minutes()+int(SlotDuration.Minutes()) > 24*60
}

// Interval is a half-open [Start, End) range within one calendar date.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewSlot builds the interval occupied by a slot beginning at start.
func NewSlot(start TimeOfDay) Interval {
	return Interval{Start: start, End: DeriveEndTime(start)}
}

// minutes returns the interval bounds as minutes since midnight, with an
// end at or before the start read as wrapped past midnight.
func (iv Interval) minutes() (int, int) {
	s, e := iv.Start.Minutes(), iv.End.Minutes()
	if e <= s {
		e += 24 * 60
	}
	return s, e
}

// Overlaps reports whether two half-open intervals on the same calendar
// date intersect.
func Overlaps(a, b Interval) bool {
	as, ae := a.minutes()
	bs, be := b.minutes()
	return as < be && bs < ae
}

// ParseDate parses a YYYY-MM-DD calendar date in local time.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: "must be a valid YYYY-MM-DD date"}
	}
	return d, nil
}
