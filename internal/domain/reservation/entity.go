package reservation

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Cancel frees the reservation's interval. Cancelling twice is a no-op;
// changed reports whether anything needs to be persisted.
func Cancel(r *models.Reservation, now time.Time) (changed bool, err error) {
	current := Status(r.Status)
	if current == StatusCancelled {
		return false, nil
	}
	if err := CanCancel(current); err != nil {
		return false, err
	}

	r.Status = string(StatusCancelled)
	r.CancelledAt = &now
	return true, nil
}

func Complete(r *models.Reservation, now time.Time) error {
	if err := CanComplete(Status(r.Status)); err != nil {
		return err
	}

	r.Status = string(StatusCompleted)
	r.CompletedAt = &now
	return nil
}

func MarkNoShow(r *models.Reservation) error {
	if err := CanMarkNoShow(Status(r.Status)); err != nil {
		return err
	}

	r.Status = string(StatusNoShow)
	return nil
}
