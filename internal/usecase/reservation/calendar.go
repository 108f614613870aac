package reservation

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
)

// barberCalendar returns every offering of the barber together with its
// effective duration. All of them share one calendar.
func barberCalendar(
	ctx context.Context,
	catalog domain.Catalog,
	barberID uint,
) ([]uint, domain.Durations, error) {

	ids, err := catalog.OfferingsForBarber(ctx, barberID)
	if err != nil {
		return nil, nil, err
	}

	durations := make(domain.Durations, len(ids))
	for _, id := range ids {
		o, err := catalog.ResolveOffering(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		durations[id] = o.Duration()
	}

	return ids, durations, nil
}
