package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type Cancel struct {
	transitioner
}

func NewCancel(
	store domain.Store,
	catalog domain.Catalog,
	audit *audit.Dispatcher,
) *Cancel {
	return &Cancel{transitioner{
		store:   store,
		catalog: catalog,
		audit:   audit,
		now:     time.Now,
	}}
}

// Execute frees the reservation's slot. Cancelling an already cancelled
// reservation returns it unchanged.
func (uc *Cancel) Execute(
	ctx context.Context,
	reservationID uint,
) (*models.Reservation, error) {
	return uc.run(ctx, reservationID, "reservation_cancelled", domain.Cancel)
}
