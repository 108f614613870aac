package reservation

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ======================================================
// GET
// ======================================================

type GetReservation struct {
	store domain.Store
}

func NewGetReservation(store domain.Store) *GetReservation {
	return &GetReservation{store: store}
}

func (uc *GetReservation) Execute(
	ctx context.Context,
	id uint,
) (*models.Reservation, error) {
	return uc.store.FindByID(ctx, id)
}

// ======================================================
// BY CLIENT
// ======================================================

type ListByClient struct {
	store domain.Store
}

func NewListByClient(store domain.Store) *ListByClient {
	return &ListByClient{store: store}
}

func (uc *ListByClient) Execute(
	ctx context.Context,
	clientID uint,
) ([]models.Reservation, error) {
	return uc.store.FindByClient(ctx, clientID)
}

// ======================================================
// BY BARBER
// ======================================================

type ListByBarber struct {
	store   domain.Store
	catalog domain.Catalog
}

func NewListByBarber(
	store domain.Store,
	catalog domain.Catalog,
) *ListByBarber {
	return &ListByBarber{store: store, catalog: catalog}
}

// Execute returns reservations of every status on any of the barber's
// offerings.
func (uc *ListByBarber) Execute(
	ctx context.Context,
	barberID uint,
) ([]models.Reservation, error) {

	ids, err := uc.catalog.OfferingsForBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}

	return uc.store.FindByOfferings(ctx, ids)
}
