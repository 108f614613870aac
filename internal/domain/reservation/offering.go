package reservation

import "github.com/BruksfildServices01/barber-booking/internal/models"

// CheckOfferingChange validates replacing current with next when current
// is referenced by at least one reservation. Price and other display
// fields may change; the fields that place a reservation on a calendar
// may not.
func CheckOfferingChange(current, next models.Offering) error {
	switch {
	case current.DurationMin != next.DurationMin:
		return &OfferingInUseError{OfferingID: current.ID, Field: "duration_min"}
	case current.BarberID != next.BarberID:
		return &OfferingInUseError{OfferingID: current.ID, Field: "barber_id"}
	case current.ServiceID != next.ServiceID:
		return &OfferingInUseError{OfferingID: current.ID, Field: "service_id"}
	}
	return nil
}
