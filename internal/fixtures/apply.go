package fixtures

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// MemoryTarget is satisfied by the in-memory store.
type MemoryTarget interface {
	PutBarber(models.Barber)
	PutService(models.Service)
	PutOffering(models.Offering) error
	PutClient(models.Client)
}

func (c *Catalog) ApplyMemory(t MemoryTarget) error {
	for _, b := range c.Barbers {
		t.PutBarber(b)
	}
	for _, s := range c.Services {
		t.PutService(s)
	}

	var errs []error
	for i, o := range c.Offerings {
		if err := t.PutOffering(o); err != nil {
			errs = append(errs, fmt.Errorf("offerings[%d]: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, cl := range c.Clients {
		t.PutClient(cl)
	}
	return nil
}

// ApplyDB upserts the catalog by id in one transaction and moves the id
// sequences past the imported rows. Offerings that already have
// reservations keep their duration and barber; a file that changes them
// is rejected as a whole.
func (c *Catalog) ApplyDB(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			rows  any
			n     int
			check func(tx *gorm.DB) error
		}{
			{"barbers", &c.Barbers, len(c.Barbers), nil},
			{"services", &c.Services, len(c.Services), nil},
			{"offerings", &c.Offerings, len(c.Offerings), c.checkBookedOfferings},
			{"clients", &c.Clients, len(c.Clients), nil},
		}

		for _, s := range steps {
			if s.n == 0 {
				continue
			}
			if s.check != nil {
				if err := s.check(tx); err != nil {
					return err
				}
			}
			if err := tx.
				Clauses(clause.OnConflict{UpdateAll: true}).
				Omit(clause.Associations).
				Create(s.rows).Error; err != nil {
				return fmt.Errorf("import %s: %w", s.table, err)
			}
			if err := tx.Exec(fmt.Sprintf(
				"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT MAX(id) FROM %[1]s))",
				s.table,
			)).Error; err != nil {
				return fmt.Errorf("reset %s sequence: %w", s.table, err)
			}
		}

		return nil
	})
}

// checkBookedOfferings locks the offerings about to be upserted and
// rejects scheduling changes to those already referenced. The row locks
// block new reservations on them until the import commits. Barber rows
// are locked first by the barber upsert, matching the order reserve uses.
func (c *Catalog) checkBookedOfferings(tx *gorm.DB) error {
	ids := c.OfferingIDs()

	var current []models.Offering
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&current).Error; err != nil {
		return fmt.Errorf("lock offerings: %w", err)
	}
	if len(current) == 0 {
		return nil
	}

	var booked []uint
	if err := tx.
		Model(&models.Reservation{}).
		Distinct("offering_id").
		Where("offering_id IN ?", ids).
		Pluck("offering_id", &booked).Error; err != nil {
		return fmt.Errorf("find booked offerings: %w", err)
	}
	if len(booked) == 0 {
		return nil
	}

	bookedSet := make(map[uint]struct{}, len(booked))
	for _, id := range booked {
		bookedSet[id] = struct{}{}
	}
	next := make(map[uint]int, len(c.Offerings))
	for i, o := range c.Offerings {
		next[o.ID] = i
	}

	var errs []error
	for _, cur := range current {
		if _, ok := bookedSet[cur.ID]; !ok {
			continue
		}
		i := next[cur.ID]
		if err := domain.CheckOfferingChange(cur, c.Offerings[i]); err != nil {
			errs = append(errs, fmt.Errorf("offerings[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
