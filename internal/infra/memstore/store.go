package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// Store keeps the catalog and reservations in process memory. It backs
// STORAGE=memory and the use-case tests.
type Store struct {
	mu sync.RWMutex

	barbers   map[uint]models.Barber
	services  map[uint]models.Service
	offerings map[uint]models.Offering
	clients   map[uint]models.Client

	reservations map[uint]models.Reservation
	order        []uint
	nextID       uint

	locks *keyedMutex
	now   func() time.Time
}

func New() *Store {
	return &Store{
		barbers:      make(map[uint]models.Barber),
		services:     make(map[uint]models.Service),
		offerings:    make(map[uint]models.Offering),
		clients:      make(map[uint]models.Client),
		reservations: make(map[uint]models.Reservation),
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

// --------------------------------------------------
// Catalog data
// --------------------------------------------------

func (s *Store) PutBarber(b models.Barber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barbers[b.ID] = b
}

func (s *Store) PutService(sv models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[sv.ID] = sv
}

// PutOffering adds or replaces an offering. Once any reservation
// references it, its duration and barber are frozen.
func (s *Store) PutOffering(o models.Offering) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.offerings[o.ID]; ok && s.referenced(o.ID) {
		if err := domain.CheckOfferingChange(current, o); err != nil {
			return err
		}
	}
	s.offerings[o.ID] = o
	return nil
}

// referenced requires s.mu.
func (s *Store) referenced(offeringID uint) bool {
	for _, r := range s.reservations {
		if r.OfferingID == offeringID {
			return true
		}
	}
	return false
}

func (s *Store) PutClient(c models.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

func (s *Store) ResolveOffering(
	_ context.Context,
	offeringID uint,
) (*models.Offering, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.offerings[offeringID]
	if !ok {
		return nil, domain.NotFound("offering", offeringID)
	}
	o.Service = s.services[o.ServiceID]
	o.Barber = s.barbers[o.BarberID]
	return &o, nil
}

func (s *Store) OfferingsForBarber(
	_ context.Context,
	barberID uint,
) ([]uint, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.barbers[barberID]; !ok {
		return nil, domain.NotFound("barber", barberID)
	}

	var ids []uint
	for id, o := range s.offerings {
		if o.BarberID == barberID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// --------------------------------------------------
// Reservations
// --------------------------------------------------

func (s *Store) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.findByID(nil, id)
}

func (s *Store) FindByClient(ctx context.Context, clientID uint) ([]models.Reservation, error) {
	return s.list(nil, func(r models.Reservation) bool {
		return r.ClientID == clientID
	}), nil
}

func (s *Store) FindByOfferings(ctx context.Context, offeringIDs []uint) ([]models.Reservation, error) {
	set := idSet(offeringIDs)
	return s.list(nil, func(r models.Reservation) bool {
		_, ok := set[r.OfferingID]
		return ok
	}), nil
}

func (s *Store) FindActiveByOffering(ctx context.Context, offeringID uint) ([]models.Reservation, error) {
	return s.list(nil, func(r models.Reservation) bool {
		return r.OfferingID == offeringID && domain.Status(r.Status).Occupies()
	}), nil
}

func (s *Store) FindActiveByOfferingsInRange(
	ctx context.Context,
	offeringIDs []uint,
	from time.Time,
	to time.Time,
) ([]models.Reservation, error) {
	return s.list(nil, inRange(offeringIDs, from, to)), nil
}

func (s *Store) Save(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepare(r); err != nil {
		return err
	}
	s.put(*r)
	return nil
}

func (s *Store) WithBarberLock(
	ctx context.Context,
	barberID uint,
	fn func(tx domain.Store) error,
) error {

	unlock, err := s.locks.Lock(ctx, barberID)
	if err != nil {
		return err
	}
	defer unlock()

	t := &tx{parent: s, pending: make(map[uint]models.Reservation)}
	if err := fn(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range t.order {
		s.put(t.pending[id])
	}
	return nil
}

// --------------------------------------------------
// internals (callers hold s.mu as noted)
// --------------------------------------------------

// prepare validates references and assigns id/timestamps. Requires s.mu.
func (s *Store) prepare(r *models.Reservation) error {
	if _, ok := s.clients[r.ClientID]; !ok {
		return domain.NotFound("client", r.ClientID)
	}
	if _, ok := s.offerings[r.OfferingID]; !ok {
		return domain.NotFound("offering", r.OfferingID)
	}
	if r.ID == 0 {
		s.nextID++
		r.ID = s.nextID
	} else if r.ID > s.nextID {
		s.nextID = r.ID
	}

	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

// put requires s.mu held for writing.
func (s *Store) put(r models.Reservation) {
	if _, exists := s.reservations[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.reservations[r.ID] = r
}

func (s *Store) findByID(t *tx, id uint) (*models.Reservation, error) {
	if t != nil {
		if r, ok := t.pending[id]; ok {
			return &r, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, domain.NotFound("reservation", id)
	}
	return &r, nil
}

// list walks reservations in insertion order, with t's uncommitted
// writes layered on top.
func (s *Store) list(t *tx, keep func(models.Reservation) bool) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Reservation{}
	for _, id := range s.order {
		r := s.reservations[id]
		if t != nil {
			if p, ok := t.pending[id]; ok {
				r = p
			}
		}
		if keep(r) {
			out = append(out, r)
		}
	}

	if t != nil {
		for _, id := range t.order {
			if _, committed := s.reservations[id]; committed {
				continue
			}
			if r := t.pending[id]; keep(r) {
				out = append(out, r)
			}
		}
	}

	return out
}

func idSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func inRange(offeringIDs []uint, from, to time.Time) func(models.Reservation) bool {
	set := idSet(offeringIDs)
	return func(r models.Reservation) bool {
		if _, ok := set[r.OfferingID]; !ok {
			return false
		}
		if !domain.Status(r.Status).Occupies() {
			return false
		}
		return r.StartTime.Before(to) && r.EndTime.After(from)
	}
}

var (
	_ domain.Store   = (*Store)(nil)
	_ domain.Catalog = (*Store)(nil)
)
