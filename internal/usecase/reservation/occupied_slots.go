package reservation

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type OccupiedSlots struct {
	store   domain.Store
	catalog domain.Catalog
}

func NewOccupiedSlots(
	store domain.Store,
	catalog domain.Catalog,
) *OccupiedSlots {
	return &OccupiedSlots{store: store, catalog: catalog}
}

// Execute lists the HH:MM start times taken on the calendar day of date
// (in date's location) for the barber behind offeringID. Reserving at any
// returned mark fails with a slot conflict.
func (uc *OccupiedSlots) Execute(
	ctx context.Context,
	offeringID uint,
	date time.Time,
) ([]string, error) {

	if date.IsZero() {
		return nil, domain.InvalidInput("date", "required")
	}

	offering, err := uc.catalog.ResolveOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	ids, durations, err := barberCalendar(ctx, uc.catalog, offering.BarberID)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := timezone.DayBounds(date)

	existing, err := uc.store.FindActiveByOfferingsInRange(ctx, ids, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return domain.SlotMarks(existing, durations, dayStart, dayEnd), nil
}
