package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ======================================================
// COMPLETE
// ======================================================

type Complete struct {
	transitioner
}

func NewComplete(
	store domain.Store,
	catalog domain.Catalog,
	audit *audit.Dispatcher,
) *Complete {
	return &Complete{transitioner{
		store:   store,
		catalog: catalog,
		audit:   audit,
		now:     time.Now,
	}}
}

func (uc *Complete) Execute(
	ctx context.Context,
	reservationID uint,
) (*models.Reservation, error) {
	return uc.run(ctx, reservationID, "reservation_completed",
		func(r *models.Reservation, now time.Time) (bool, error) {
			return true, domain.Complete(r, now)
		},
	)
}

// ======================================================
// NO-SHOW
// ======================================================

type MarkNoShow struct {
	transitioner
}

func NewMarkNoShow(
	store domain.Store,
	catalog domain.Catalog,
	audit *audit.Dispatcher,
) *MarkNoShow {
	return &MarkNoShow{transitioner{
		store:   store,
		catalog: catalog,
		audit:   audit,
		now:     time.Now,
	}}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	reservationID uint,
) (*models.Reservation, error) {
	return uc.run(ctx, reservationID, "reservation_no_show",
		func(r *models.Reservation, _ time.Time) (bool, error) {
			return true, domain.MarkNoShow(r)
		},
	)
}
