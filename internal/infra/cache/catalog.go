package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const offeringKeyPrefix = "catalog:offering:"

func offeringKey(id uint) string {
	return fmt.Sprintf("%s%d", offeringKeyPrefix, id)
}

// Catalog is a read-through cache in front of another Catalog. Only
// offering resolution is cached; offerings referenced by reservations do
// not change. Redis failures fall back to the wrapped catalog.
type Catalog struct {
	next   domain.Catalog
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCatalog(
	next domain.Catalog,
	client *redis.Client,
	ttl time.Duration,
	log *zap.Logger,
) *Catalog {
	return &Catalog{next: next, client: client, ttl: ttl, log: log}
}

func (c *Catalog) ResolveOffering(
	ctx context.Context,
	offeringID uint,
) (*models.Offering, error) {

	key := offeringKey(offeringID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var o models.Offering
		if err := json.Unmarshal(raw, &o); err == nil {
			return &o, nil
		}
		c.log.Warn("corrupt catalog cache entry", zap.String("key", key))
	case err != redis.Nil:
		c.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	o, err := c.next.ResolveOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(o); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return o, nil
}

func (c *Catalog) OfferingsForBarber(
	ctx context.Context,
	barberID uint,
) ([]uint, error) {
	return c.next.OfferingsForBarber(ctx, barberID)
}

// Invalidate drops a cached offering. Used by the fixture importer.
func (c *Catalog) Invalidate(ctx context.Context, offeringIDs ...uint) error {
	if len(offeringIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(offeringIDs))
	for _, id := range offeringIDs {
		keys = append(keys, offeringKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

var _ domain.Catalog = (*Catalog)(nil)
