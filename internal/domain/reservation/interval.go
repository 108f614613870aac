package reservation

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// SlotGranularity is the step used when marking occupied start times.
const SlotGranularity = 15 * time.Minute

// Interval is half-open: [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

// Overlaps treats touching endpoints as free.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// Durations maps offering id to the offering's effective duration.
type Durations map[uint]time.Duration

// IntervalOf derives a reservation's interval from its offering duration.
// The stored end time is used only when the offering is unknown to d.
func (d Durations) IntervalOf(r models.Reservation) Interval {
	if dur, ok := d[r.OfferingID]; ok {
		return NewInterval(r.StartTime, dur)
	}
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// FindConflict returns the first non-cancelled reservation overlapping
// candidate, or nil.
func FindConflict(
	candidate Interval,
	existing []models.Reservation,
	durations Durations,
) *SlotConflictError {

	for _, r := range existing {
		if !Status(r.Status).Occupies() {
			continue
		}

		iv := durations.IntervalOf(r)
		if candidate.Overlaps(iv) {
			return &SlotConflictError{
				ReservationID: r.ID,
				Start:         iv.Start,
				End:           iv.End,
			}
		}
	}

	return nil
}

// SlotMarks lists the HH:MM marks taken by the given reservations within
// [dayStart, dayEnd). Marks step from each reservation's own start, so
// every mark lies strictly inside an occupied interval.
func SlotMarks(
	existing []models.Reservation,
	durations Durations,
	dayStart time.Time,
	dayEnd time.Time,
) []string {

	seen := make(map[int64]time.Time)

	for _, r := range existing {
		if !Status(r.Status).Occupies() {
			continue
		}

		iv := durations.IntervalOf(r)
		for t := iv.Start; t.Before(iv.End); t = t.Add(SlotGranularity) {
			if t.Before(dayStart) || !t.Before(dayEnd) {
				continue
			}
			seen[t.UnixNano()] = t
		}
	}

	marks := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		marks = append(marks, t)
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].Before(marks[j]) })

	out := make([]string, 0, len(marks))
	labels := make(map[string]struct{}, len(marks))
	for _, t := range marks {
		// wall-clock labels can repeat across a DST fold
		label := t.In(dayStart.Location()).Format("15:04")
		if _, dup := labels[label]; dup {
			continue
		}
		labels[label] = struct{}{}
		out = append(out, label)
	}

	return out
}
