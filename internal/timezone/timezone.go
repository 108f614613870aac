package timezone

import (
	"sync"
	"time"
)

const DefaultTimezone = "America/Sao_Paulo"

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

type loaded struct {
	loc *time.Location
	err error
}

// locations memoizes time.LoadLocation by name, failures included.
var locations sync.Map

func load(tz string) (*time.Location, error) {
	if v, ok := locations.Load(tz); ok {
		l := v.(loaded)
		return l.loc, l.err
	}

	loc, err := time.LoadLocation(tz)
	v, _ := locations.LoadOrStore(tz, loaded{loc: loc, err: err})
	l := v.(loaded)
	return l.loc, l.err
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := load(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := load(tz); err == nil {
			return loc
		}
	}

	loc, err := load(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

func ParseDate(tz, date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, Location(tz))
}

func ParseDateTime(tz, date, hm string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, date+" "+hm, Location(tz))
}

// DayBounds returns [midnight, next midnight) of the calendar day of t in
// t's location. The day is not always 24h long.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
