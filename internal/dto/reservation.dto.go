package dto

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ReservationDTO struct {
	ID         uint `json:"id"`
	ClientID   uint `json:"client_id"`
	OfferingID uint `json:"offering_id"`
	BarberID   uint `json:"barber_id,omitempty"`

	ServiceName string  `json:"service_name,omitempty"`
	Price       float64 `json:"price,omitempty"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FromReservation renders times in loc. o may be nil when the offering
// could not be resolved.
func FromReservation(
	r models.Reservation,
	o *models.Offering,
	loc *time.Location,
) ReservationDTO {

	out := ReservationDTO{
		ID:          r.ID,
		ClientID:    r.ClientID,
		OfferingID:  r.OfferingID,
		StartTime:   r.StartTime.In(loc),
		EndTime:     r.EndTime.In(loc),
		Status:      r.Status,
		Notes:       r.Notes,
		CancelledAt: inLoc(r.CancelledAt, loc),
		CompletedAt: inLoc(r.CompletedAt, loc),
		CreatedAt:   r.CreatedAt.In(loc),
	}

	if o != nil {
		out.BarberID = o.BarberID
		out.ServiceName = o.Service.Name
		out.Price = o.Price
		out.EndTime = r.StartTime.Add(o.Duration()).In(loc)
	}

	return out
}

func inLoc(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}
