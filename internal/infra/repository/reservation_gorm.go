package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barber-booking/internal/db"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const clientForeignKey = "fk_reservations_client"

type ReservationGormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewReservationGormRepository(
	db *gorm.DB,
	lockTimeout time.Duration,
) *ReservationGormRepository {
	return &ReservationGormRepository{db: db, lockTimeout: lockTimeout}
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *ReservationGormRepository) FindByID(
	ctx context.Context,
	id uint,
) (*models.Reservation, error) {

	var res models.Reservation
	err := r.db.WithContext(ctx).First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("reservation", id)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationGormRepository) FindByClient(
	ctx context.Context,
	clientID uint,
) ([]models.Reservation, error) {

	res := []models.Reservation{}
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id ASC").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationGormRepository) FindByOfferings(
	ctx context.Context,
	offeringIDs []uint,
) ([]models.Reservation, error) {

	res := []models.Reservation{}
	if len(offeringIDs) == 0 {
		return res, nil
	}
	if err := r.db.WithContext(ctx).
		Where("offering_id IN ?", offeringIDs).
		Order("id ASC").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationGormRepository) FindActiveByOffering(
	ctx context.Context,
	offeringID uint,
) ([]models.Reservation, error) {

	res := []models.Reservation{}
	if err := r.db.WithContext(ctx).
		Where("offering_id = ? AND status <> ?", offeringID, domain.StatusCancelled).
		Order("id ASC").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationGormRepository) FindActiveByOfferingsInRange(
	ctx context.Context,
	offeringIDs []uint,
	from time.Time,
	to time.Time,
) ([]models.Reservation, error) {

	res := []models.Reservation{}
	if len(offeringIDs) == 0 {
		return res, nil
	}
	if err := r.db.WithContext(ctx).
		Where(
			"offering_id IN ? AND status <> ? AND start_time < ? AND end_time > ?",
			offeringIDs,
			domain.StatusCancelled,
			to,
			from,
		).
		Order("start_time ASC, id ASC").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *ReservationGormRepository) Save(
	ctx context.Context,
	res *models.Reservation,
) error {

	q := r.db.WithContext(ctx).Omit(clause.Associations)

	var err error
	if res.ID == 0 {
		err = q.Create(res).Error
	} else {
		err = q.Save(res).Error
	}

	if name, ok := db.ForeignKeyConstraint(err); ok {
		if name == clientForeignKey {
			return domain.NotFound("client", res.ClientID)
		}
		return domain.NotFound("offering", res.OfferingID)
	}
	return err
}

// WithBarberLock serializes writers on the barber row. Readers are not
// blocked. A writer that waits longer than lockTimeout fails with a
// contention error (see db.IsContention).
func (r *ReservationGormRepository) WithBarberLock(
	ctx context.Context,
	barberID uint,
	fn func(tx domain.Store) error,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		var barber models.Barber
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&barber, barberID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("barber", barberID)
		}
		if err != nil {
			return err
		}

		return fn(&ReservationGormRepository{db: tx, lockTimeout: r.lockTimeout})
	})
}

// Compile-time check
var _ domain.Store = (*ReservationGormRepository)(nil)
