package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) ResolveOffering(
	ctx context.Context,
	offeringID uint,
) (*models.Offering, error) {

	var o models.Offering
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Barber").
		First(&o, offeringID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("offering", offeringID)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *CatalogGormRepository) OfferingsForBarber(
	ctx context.Context,
	barberID uint,
) ([]uint, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ?", barberID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.NotFound("barber", barberID)
	}

	ids := []uint{}
	if err := r.db.WithContext(ctx).
		Model(&models.Offering{}).
		Where("barber_id = ?", barberID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Compile-time check
var _ domain.Catalog = (*CatalogGormRepository)(nil)
