package memstore

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// tx buffers writes made under a barber lock until fn succeeds.
type tx struct {
	parent  *Store
	pending map[uint]models.Reservation
	order   []uint
}

func (t *tx) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	return t.parent.findByID(t, id)
}

func (t *tx) FindByClient(ctx context.Context, clientID uint) ([]models.Reservation, error) {
	return t.parent.list(t, func(r models.Reservation) bool {
		return r.ClientID == clientID
	}), nil
}

func (t *tx) FindByOfferings(ctx context.Context, offeringIDs []uint) ([]models.Reservation, error) {
	set := idSet(offeringIDs)
	return t.parent.list(t, func(r models.Reservation) bool {
		_, ok := set[r.OfferingID]
		return ok
	}), nil
}

func (t *tx) FindActiveByOffering(ctx context.Context, offeringID uint) ([]models.Reservation, error) {
	return t.parent.list(t, func(r models.Reservation) bool {
		return r.OfferingID == offeringID && domain.Status(r.Status).Occupies()
	}), nil
}

func (t *tx) FindActiveByOfferingsInRange(
	ctx context.Context,
	offeringIDs []uint,
	from time.Time,
	to time.Time,
) ([]models.Reservation, error) {
	return t.parent.list(t, inRange(offeringIDs, from, to)), nil
}

func (t *tx) Save(ctx context.Context, r *models.Reservation) error {
	t.parent.mu.Lock()
	err := t.parent.prepare(r)
	t.parent.mu.Unlock()
	if err != nil {
		return err
	}

	if _, seen := t.pending[r.ID]; !seen {
		t.order = append(t.order, r.ID)
	}
	t.pending[r.ID] = *r
	return nil
}

// WithBarberLock inside a tx reuses the lock already held.
func (t *tx) WithBarberLock(
	ctx context.Context,
	barberID uint,
	fn func(tx domain.Store) error,
) error {
	return fn(t)
}

var _ domain.Store = (*tx)(nil)
