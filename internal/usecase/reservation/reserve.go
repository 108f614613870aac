package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type ReserveInput struct {
	ClientID   uint
	OfferingID uint
	StartTime  time.Time
	Notes      string
}

func (in ReserveInput) validate() error {
	switch {
	case in.ClientID == 0:
		return domain.InvalidInput("client_id", "required")
	case in.OfferingID == 0:
		return domain.InvalidInput("offering_id", "required")
	case in.StartTime.IsZero():
		return domain.InvalidInput("start_time", "required")
	}
	return nil
}

// ======================================================
// USE CASE
// ======================================================

type Reserve struct {
	store   domain.Store
	catalog domain.Catalog
	audit   *audit.Dispatcher
	now     func() time.Time
}

func NewReserve(
	store domain.Store,
	catalog domain.Catalog,
	audit *audit.Dispatcher,
) *Reserve {
	return &Reserve{
		store:   store,
		catalog: catalog,
		audit:   audit,
		now:     time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Reserve) Execute(
	ctx context.Context,
	in ReserveInput,
) (*models.Reservation, error) {

	if err := in.validate(); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Offering
	// --------------------------------------------------
	offering, err := uc.catalog.ResolveOffering(ctx, in.OfferingID)
	if err != nil {
		return nil, err
	}
	if offering.Duration() <= 0 {
		return nil, domain.InvalidInput("offering", "duration must be positive")
	}

	candidate := domain.NewInterval(in.StartTime, offering.Duration())

	// --------------------------------------------------
	// Check + write, serialized per barber
	// --------------------------------------------------
	var created *models.Reservation

	err = uc.store.WithBarberLock(ctx, offering.BarberID, func(tx domain.Store) error {
		ids, durations, err := barberCalendar(ctx, uc.catalog, offering.BarberID)
		if err != nil {
			return err
		}

		existing, err := tx.FindActiveByOfferingsInRange(ctx, ids, candidate.Start, candidate.End)
		if err != nil {
			return err
		}

		if conflict := domain.FindConflict(candidate, existing, durations); conflict != nil {
			return conflict
		}

		r := &models.Reservation{
			ClientID:   in.ClientID,
			OfferingID: offering.ID,
			StartTime:  candidate.Start,
			EndTime:    candidate.End,
			Status:     string(domain.InitialStatus()),
			Notes:      in.Notes,
			CreatedAt:  uc.now(),
		}
		if err := tx.Save(ctx, r); err != nil {
			return err
		}

		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		Action:   "reservation_created",
		Entity:   "reservation",
		EntityID: &created.ID,
		Metadata: eventMetadata(offering, created),
	})

	return created, nil
}
