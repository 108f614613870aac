package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// Catalog resolves offerings. Implementations return *NotFoundError for
// unknown offerings and barbers.
type Catalog interface {
	ResolveOffering(
		ctx context.Context,
		offeringID uint,
	) (*models.Offering, error)

	OfferingsForBarber(
		ctx context.Context,
		barberID uint,
	) ([]uint, error)
}

// Store persists reservations. Reservations are never deleted.
type Store interface {
	// -------- Reads --------
	FindByID(
		ctx context.Context,
		id uint,
	) (*models.Reservation, error)

	FindByClient(
		ctx context.Context,
		clientID uint,
	) ([]models.Reservation, error)

	FindByOfferings(
		ctx context.Context,
		offeringIDs []uint,
	) ([]models.Reservation, error)

	FindActiveByOffering(
		ctx context.Context,
		offeringID uint,
	) ([]models.Reservation, error)

	// FindActiveByOfferingsInRange returns non-cancelled reservations whose
	// interval intersects [from, to).
	FindActiveByOfferingsInRange(
		ctx context.Context,
		offeringIDs []uint,
		from time.Time,
		to time.Time,
	) ([]models.Reservation, error)

	// -------- Writes --------
	Save(
		ctx context.Context,
		r *models.Reservation,
	) error

	// WithBarberLock runs fn with exclusive write access to one barber's
	// calendar. fn receives a Store bound to the same atomic unit; if fn
	// returns an error nothing it saved is kept. Locks for different
	// barbers are independent.
	WithBarberLock(
		ctx context.Context,
		barberID uint,
		fn func(tx Store) error,
	) error
}
