package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const (
	barberIvan = 1
	barberPetr = 2

	haircutIvan = 1 // 45 min
	beardIvan   = 2 // 30 min
	haircutPetr = 3 // 60 min

	clientX = 100
	clientY = 101
)

type eventSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *eventSink) Name() string { return "test" }

func (s *eventSink) Write(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

type engine struct {
	store *memstore.Store
	sink  *eventSink
	audit *audit.Dispatcher

	reserve  *Reserve
	cancel   *Cancel
	complete *Complete
	noShow   *MarkNoShow
	get      *GetReservation
	byClient *ListByClient
	byBarber *ListByBarber
	slots    *OccupiedSlots
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	s := memstore.New()
	s.PutBarber(models.Barber{ID: barberIvan, Name: "Ivan"})
	s.PutBarber(models.Barber{ID: barberPetr, Name: "Petr"})
	s.PutService(models.Service{ID: 1, Name: "Haircut", BaseDurationMin: 45, BasePrice: 1500})
	s.PutService(models.Service{ID: 2, Name: "Beard", BaseDurationMin: 30, BasePrice: 800})
	s.PutOffering(models.Offering{ID: haircutIvan, BarberID: barberIvan, ServiceID: 1, DurationMin: 45, Price: 1500})
	s.PutOffering(models.Offering{ID: beardIvan, BarberID: barberIvan, ServiceID: 2, DurationMin: 30, Price: 800})
	s.PutOffering(models.Offering{ID: haircutPetr, BarberID: barberPetr, ServiceID: 1, DurationMin: 60, Price: 1800})
	s.PutClient(models.Client{ID: clientX, Name: "X"})
	s.PutClient(models.Client{ID: clientY, Name: "Y"})

	sink := &eventSink{}
	d := audit.NewDispatcher(zap.NewNop(), sink)
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	return &engine{
		store:    s,
		sink:     sink,
		audit:    d,
		reserve:  NewReserve(s, s, d),
		cancel:   NewCancel(s, s, d),
		complete: NewComplete(s, s, d),
		noShow:   NewMarkNoShow(s, s, d),
		get:      NewGetReservation(s),
		byClient: NewListByClient(s),
		byBarber: NewListByBarber(s, s),
		slots:    NewOccupiedSlots(s, s),
	}
}

// actions drains the dispatcher and returns the recorded event actions.
func (e *engine) actions(t *testing.T) []string {
	t.Helper()
	require.NoError(t, e.audit.Close(context.Background()))

	e.sink.mu.Lock()
	defer e.sink.mu.Unlock()
	out := make([]string, 0, len(e.sink.events))
	for _, ev := range e.sink.events {
		out = append(out, ev.Action)
	}
	return out
}

func (e *engine) book(t *testing.T, client, offering uint, start time.Time) (*models.Reservation, error) {
	t.Helper()
	return e.reserve.Execute(context.Background(), ReserveInput{
		ClientID:   client,
		OfferingID: offering,
		StartTime:  start,
	})
}

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

// ======================================================
// Scenarios
// ======================================================

func TestReserve_OverlapSameOffering(t *testing.T) {
	e := newEngine(t)

	r, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusScheduled), r.Status)
	assert.Equal(t, at(10, 45), r.EndTime)
	assert.False(t, r.CreatedAt.IsZero())

	_, err = e.book(t, clientY, haircutIvan, at(10, 30))
	var conflict *domain.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, r.ID, conflict.ReservationID)
	assert.Equal(t, at(10, 0), conflict.Start)
	assert.Equal(t, at(10, 45), conflict.End)

	all, err := e.byBarber.Execute(context.Background(), barberIvan)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReserve_TouchingBoundaryIsFree(t *testing.T) {
	e := newEngine(t)

	_, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)

	r, err := e.book(t, clientY, haircutIvan, at(10, 45))
	require.NoError(t, err)
	assert.Equal(t, at(11, 30), r.EndTime)

	// and the slot right before
	_, err = e.book(t, clientY, beardIvan, at(9, 30))
	require.NoError(t, err)
}

func TestReserve_CancelFreesSlot(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	first, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)

	cancelled, err := e.cancel.Execute(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = e.book(t, clientY, haircutIvan, at(10, 0))
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"reservation_created", "reservation_cancelled", "reservation_created"},
		e.actions(t),
	)
}

func TestReserve_CrossOfferingSameBarber(t *testing.T) {
	e := newEngine(t)

	_, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)

	_, err = e.book(t, clientY, beardIvan, at(10, 20))
	assert.True(t, domain.IsSlotConflict(err), "got %v", err)

	// another barber's calendar is independent
	_, err = e.book(t, clientY, haircutPetr, at(10, 20))
	require.NoError(t, err)
}

func TestOccupiedSlots_SingleReservation(t *testing.T) {
	e := newEngine(t)

	_, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)

	marks, err := e.slots.Execute(context.Background(), haircutIvan, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:15", "10:30"}, marks)

	// same barber, other offering: same calendar
	marks, err = e.slots.Execute(context.Background(), beardIvan, at(15, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:15", "10:30"}, marks)

	marks, err = e.slots.Execute(context.Background(), haircutPetr, at(0, 0))
	require.NoError(t, err)
	assert.Empty(t, marks)
}

// ======================================================
// Reserve edge cases
// ======================================================

func TestReserve_ValidatesInputBeforeLookup(t *testing.T) {
	e := newEngine(t)

	_, err := e.reserve.Execute(context.Background(), ReserveInput{ClientID: clientX, OfferingID: 999})
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "start_time", invalid.Field)

	_, err = e.reserve.Execute(context.Background(), ReserveInput{OfferingID: haircutIvan, StartTime: at(10, 0)})
	assert.True(t, domain.IsInvalidInput(err))
}

func TestReserve_UnknownReferences(t *testing.T) {
	e := newEngine(t)

	_, err := e.book(t, clientX, 999, at(10, 0))
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "offering", nf.Entity)

	_, err = e.book(t, 7, haircutIvan, at(10, 0))
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "client", nf.Entity)

	all, err := e.byBarber.Execute(context.Background(), barberIvan)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, e.actions(t))
}

func TestReserve_ZeroDurationOffering(t *testing.T) {
	e := newEngine(t)
	e.store.PutOffering(models.Offering{ID: 50, BarberID: barberIvan, ServiceID: 1})

	_, err := e.book(t, clientX, 50, at(10, 0))
	assert.True(t, domain.IsInvalidInput(err))
}

func TestReserve_BookedOfferingDurationIsFrozen(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)

	err = e.store.PutOffering(models.Offering{
		ID: haircutIvan, BarberID: barberIvan, ServiceID: 1, DurationMin: 90, Price: 1500,
	})
	require.True(t, domain.IsOfferingInUse(err))

	marks, err := e.slots.Execute(ctx, haircutIvan, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:15", "10:30"}, marks)

	// every listed mark is still rejected
	for _, m := range marks {
		start, err := time.ParseInLocation("2006-01-02 15:04", "2026-03-10 "+m, time.UTC)
		require.NoError(t, err)
		_, err = e.book(t, clientY, beardIvan, start)
		assert.True(t, domain.IsSlotConflict(err), m)
	}
}

func TestReserve_PastTimesAccepted(t *testing.T) {
	e := newEngine(t)

	_, err := e.book(t, clientX, haircutIvan, time.Date(2001, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestReserve_CompletedAndNoShowStillOccupy(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	a, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)
	b, err := e.book(t, clientX, haircutIvan, at(12, 0))
	require.NoError(t, err)

	_, err = e.complete.Execute(ctx, a.ID)
	require.NoError(t, err)
	_, err = e.noShow.Execute(ctx, b.ID)
	require.NoError(t, err)

	_, err = e.book(t, clientY, beardIvan, at(10, 15))
	assert.True(t, domain.IsSlotConflict(err))
	_, err = e.book(t, clientY, beardIvan, at(12, 15))
	assert.True(t, domain.IsSlotConflict(err))
}

// ======================================================
// Lifecycle
// ======================================================

func TestCancel_IsIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	r, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)

	first, err := e.cancel.Execute(ctx, r.ID)
	require.NoError(t, err)

	second, err := e.cancel.Execute(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), second.Status)
	assert.Equal(t, first.CancelledAt, second.CancelledAt)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)

	assert.Equal(t, []string{"reservation_created", "reservation_cancelled"}, e.actions(t))
}

func TestCancel_AnyStatus(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	r, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)
	_, err = e.complete.Execute(ctx, r.ID)
	require.NoError(t, err)

	got, err := e.cancel.Execute(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)
}

func TestCancel_NotFound(t *testing.T) {
	e := newEngine(t)

	_, err := e.cancel.Execute(context.Background(), 404)
	assert.True(t, domain.IsNotFound(err))

	_, err = e.cancel.Execute(context.Background(), 0)
	assert.True(t, domain.IsInvalidInput(err))
}

func TestCompleteAndNoShow_OnlyFromScheduled(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	r, err := e.book(t, clientX, haircutIvan, at(10, 0))
	require.NoError(t, err)

	done, err := e.complete.Execute(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), done.Status)
	assert.NotNil(t, done.CompletedAt)

	_, err = e.complete.Execute(ctx, r.ID)
	assert.True(t, domain.IsInvalidTransition(err))

	_, err = e.noShow.Execute(ctx, r.ID)
	assert.True(t, domain.IsInvalidTransition(err))

	stored, err := e.get.Execute(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), stored.Status)
}

// ======================================================
// Reads
// ======================================================

func TestListByBarber_AllStatusesAcrossOfferings(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	a, err := e.book(t, clientX, haircutIvan, at(9, 0))
	require.NoError(t, err)
	_, err = e.book(t, clientY, beardIvan, at(11, 0))
	require.NoError(t, err)
	_, err = e.book(t, clientY, haircutPetr, at(9, 0))
	require.NoError(t, err)
	_, err = e.cancel.Execute(ctx, a.ID)
	require.NoError(t, err)

	ivan, err := e.byBarber.Execute(ctx, barberIvan)
	require.NoError(t, err)
	assert.Len(t, ivan, 2)

	_, err = e.byBarber.Execute(ctx, 77)
	assert.True(t, domain.IsNotFound(err))

	ys, err := e.byClient.Execute(ctx, clientY)
	require.NoError(t, err)
	assert.Len(t, ys, 2)

	none, err := e.byClient.Execute(ctx, 555)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOccupiedSlots_ClipsToDay(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.book(t, clientX, haircutIvan, at(23, 30))
	require.NoError(t, err)

	marks, err := e.slots.Execute(ctx, haircutIvan, at(12, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"23:30", "23:45"}, marks)

	marks, err = e.slots.Execute(ctx, haircutIvan, at(12, 0).AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"00:00"}, marks)
}

func TestOccupiedSlots_EveryMarkConflicts(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.book(t, clientX, haircutIvan, at(9, 10))
	require.NoError(t, err)
	_, err = e.book(t, clientX, beardIvan, at(10, 0))
	require.NoError(t, err)
	_, err = e.book(t, clientX, haircutIvan, at(14, 5))
	require.NoError(t, err)

	marks, err := e.slots.Execute(ctx, beardIvan, at(0, 0))
	require.NoError(t, err)
	require.NotEmpty(t, marks)

	for _, m := range marks {
		start, err := time.ParseInLocation("2006-01-02 15:04", "2026-03-10 "+m, time.UTC)
		require.NoError(t, err)

		for _, offering := range []uint{haircutIvan, beardIvan} {
			_, err = e.book(t, clientY, offering, start)
			assert.True(t, domain.IsSlotConflict(err), "mark %s offering %d: %v", m, offering, err)
		}
	}
}

func TestOccupiedSlots_Errors(t *testing.T) {
	e := newEngine(t)

	_, err := e.slots.Execute(context.Background(), 999, at(0, 0))
	assert.True(t, domain.IsNotFound(err))

	_, err = e.slots.Execute(context.Background(), haircutIvan, time.Time{})
	assert.True(t, domain.IsInvalidInput(err))
}

// ======================================================
// Concurrency
// ======================================================

func TestReserve_ConcurrentOverlappingRequests(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		offering := uint(haircutIvan)
		if i%2 == 1 {
			offering = beardIvan
		}
		start := at(10, 0).Add(time.Duration(i%3) * 10 * time.Minute)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.reserve.Execute(ctx, ReserveInput{ClientID: clientX, OfferingID: offering, StartTime: start})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.IsSlotConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	all, err := e.byBarber.Execute(ctx, barberIvan)
	require.NoError(t, err)
	assertNoOverlap(t, all)
}

func TestReserve_ConcurrentDifferentBarbers(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, offering := range []uint{haircutIvan, haircutPetr} {
		wg.Add(1)
		go func(i int, offering uint) {
			defer wg.Done()
			_, errs[i] = e.reserve.Execute(ctx, ReserveInput{ClientID: clientX, OfferingID: offering, StartTime: at(10, 0)})
		}(i, offering)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func assertNoOverlap(t *testing.T, rs []models.Reservation) {
	t.Helper()

	for i := range rs {
		for j := i + 1; j < len(rs); j++ {
			a, b := rs[i], rs[j]
			if !domain.Status(a.Status).Occupies() || !domain.Status(b.Status).Occupies() {
				continue
			}
			overlap := a.StartTime.Before(b.EndTime) && a.EndTime.After(b.StartTime)
			assert.False(t, overlap, "reservations %d and %d overlap", a.ID, b.ID)
		}
	}
}
