package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// transitionFunc mutates r in place. changed=false means r is already in
// the requested state and nothing is written.
type transitionFunc func(r *models.Reservation, now time.Time) (changed bool, err error)

// transitioner runs a status change under the barber lock of the
// reservation's offering, re-reading the record inside the lock.
type transitioner struct {
	store   domain.Store
	catalog domain.Catalog
	audit   *audit.Dispatcher
	now     func() time.Time
}

func (t transitioner) run(
	ctx context.Context,
	reservationID uint,
	action string,
	apply transitionFunc,
) (*models.Reservation, error) {

	if reservationID == 0 {
		return nil, domain.InvalidInput("reservation_id", "required")
	}

	current, err := t.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	offering, err := t.catalog.ResolveOffering(ctx, current.OfferingID)
	if err != nil {
		return nil, err
	}

	var (
		result  *models.Reservation
		changed bool
	)

	err = t.store.WithBarberLock(ctx, offering.BarberID, func(tx domain.Store) error {
		r, err := tx.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}

		changed, err = apply(r, t.now())
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Save(ctx, r); err != nil {
				return err
			}
		}

		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		t.audit.Dispatch(audit.Event{
			Action:   action,
			Entity:   "reservation",
			EntityID: &result.ID,
			Metadata: eventMetadata(offering, result),
		})
	}

	return result, nil
}

func eventMetadata(o *models.Offering, r *models.Reservation) map[string]any {
	return map[string]any{
		"barber_id":   o.BarberID,
		"offering_id": r.OfferingID,
		"client_id":   r.ClientID,
		"start_time":  r.StartTime,
		"status":      r.Status,
	}
}
