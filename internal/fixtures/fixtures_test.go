package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/db"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func repoFixture(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "fixtures", "barbershop.yaml")
}

func TestLoad_BundledFixture(t *testing.T) {
	c, err := Load(repoFixture(t))
	require.NoError(t, err)

	assert.Len(t, c.Barbers, 2)
	assert.Len(t, c.Services, 3)
	assert.Equal(t, []uint{1, 2, 3, 4}, c.OfferingIDs())
	assert.Equal(t, "+5511987654321", c.Barbers[0].Phone)
}

func TestParse_OfferingDefaults(t *testing.T) {
	c, err := Parse([]byte(`
barbers: [{id: 1, name: Ivan}]
services:
  - {id: 1, name: Haircut, duration_min: 45, price: 1500}
  - {id: 2, name: Beard, duration_min: 30, price: 800}
offerings:
  - {id: 10, barber_id: 1, service_id: 1}
  - {id: 11, barber_id: 1, service_id: 2, duration_min: 40}
`))
	require.NoError(t, err)

	require.Len(t, c.Offerings, 2)
	assert.Equal(t, 45, c.Offerings[0].DurationMin)
	assert.Equal(t, 1500.0, c.Offerings[0].Price)
	assert.Equal(t, 40, c.Offerings[1].DurationMin)
	assert.Equal(t, 800.0, c.Offerings[1].Price)
}

func TestParse_ReportsAllProblems(t *testing.T) {
	_, err := Parse([]byte(`
barbers: [{id: 1, name: Ivan}, {id: 1, name: Copy}]
services: [{id: 1, name: Haircut, duration_min: 0}]
offerings:
  - {id: 10, barber_id: 9, service_id: 1}
  - {id: 11, barber_id: 1, service_id: 1}
  - {id: 12, barber_id: 1, service_id: 1}
clients: [{id: 1, name: X, email: nope}]
`))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "barbers[1]: duplicate id 1")
	assert.Contains(t, msg, "services[0]: duration_min must be positive")
	assert.Contains(t, msg, "offerings[0]: unknown barber 9")
	assert.Contains(t, msg, "offerings[2]: barber 1 already offers service 1")
	assert.Contains(t, msg, "clients[0]: invalid email")
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
barbers: [{id: 1, name: Ivan, specialization: beards}]
`))
	assert.Error(t, err)
}

func TestApplyMemory(t *testing.T) {
	c, err := Load(repoFixture(t))
	require.NoError(t, err)

	s := memstore.New()
	require.NoError(t, c.ApplyMemory(s))

	o, err := s.ResolveOffering(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 75, o.DurationMin)
	assert.Equal(t, 1900.0, o.Price)
	assert.Equal(t, "Corte + Barba", o.Service.Name)

	ids, err := s.OfferingsForBarber(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, ids)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	gdb, err := db.NewDB(dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, gdb.Exec(
		"TRUNCATE reservations, offerings, services, clients, barbers RESTART IDENTITY CASCADE",
	).Error)
	return gdb
}

func TestApplyMemory_BookedOfferingKeepsDuration(t *testing.T) {
	c, err := Load(repoFixture(t))
	require.NoError(t, err)

	s := memstore.New()
	require.NoError(t, c.ApplyMemory(s))

	ctx := context.Background()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, &models.Reservation{
		ClientID: 1, OfferingID: 1, StartTime: start, EndTime: start.Add(45 * time.Minute), Status: "scheduled",
	}))

	c.Offerings[0].DurationMin = 90
	err = c.ApplyMemory(s)
	require.Error(t, err)
	assert.True(t, domain.IsOfferingInUse(err))
	assert.Contains(t, err.Error(), "offerings[0]")

	o, err := s.ResolveOffering(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, o.DurationMin)
}

func TestApplyDB(t *testing.T) {
	gdb := openTestDB(t)

	c, err := Load(repoFixture(t))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.ApplyDB(ctx, gdb))
	require.NoError(t, c.ApplyDB(ctx, gdb), "import is idempotent")

	var count int64
	require.NoError(t, gdb.Model(&models.Offering{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	next := models.Barber{Name: "New"}
	require.NoError(t, gdb.Create(&next).Error)
	assert.Equal(t, uint(3), next.ID)
}

func TestApplyDB_BookedOfferingKeepsDuration(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	c, err := Load(repoFixture(t))
	require.NoError(t, err)
	require.NoError(t, c.ApplyDB(ctx, gdb))

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Create(&models.Reservation{
		ClientID: 1, OfferingID: 1, StartTime: start, EndTime: start.Add(45 * time.Minute), Status: "scheduled",
	}).Error)

	c.Offerings[0].DurationMin = 90
	c.Offerings[0].Price = 1600
	err = c.ApplyDB(ctx, gdb)
	require.Error(t, err)
	assert.True(t, domain.IsOfferingInUse(err))

	var stored models.Offering
	require.NoError(t, gdb.First(&stored, 1).Error)
	assert.Equal(t, 45, stored.DurationMin)
	assert.Equal(t, 1500.0, stored.Price, "rejected import is rolled back")

	// price alone may still change
	c.Offerings[0].DurationMin = 45
	require.NoError(t, c.ApplyDB(ctx, gdb))
	require.NoError(t, gdb.First(&stored, 1).Error)
	assert.Equal(t, 1600.0, stored.Price)

	// unbooked offerings are still editable
	c.Offerings[3].DurationMin = 50
	require.NoError(t, c.ApplyDB(ctx, gdb))
}
