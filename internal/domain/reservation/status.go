package reservation

// ===============================
// Reservation Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Occupies reports whether a reservation in this status still holds its
// interval on the barber's calendar.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

// ===============================
// Validations
// ===============================

// CanCancel: any status may be cancelled.
func CanCancel(current Status) error {
	if !current.Valid() {
		return &InvalidTransitionError{From: current, To: StatusCancelled}
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusScheduled {
		return &InvalidTransitionError{From: current, To: StatusCompleted}
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if current != StatusScheduled {
		return &InvalidTransitionError{From: current, To: StatusNoShow}
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
