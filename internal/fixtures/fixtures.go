package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	yaml "go.yaml.in/yaml/v3"

	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/validators"
)

// File is the on-disk catalog fixture: barbers, services, the offerings
// linking them, and clients.
type File struct {
	Barbers   []Barber   `yaml:"barbers"`
	Services  []Service  `yaml:"services"`
	Offerings []Offering `yaml:"offerings"`
	Clients   []Client   `yaml:"clients"`
}

type Barber struct {
	ID    uint   `yaml:"id"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

type Service struct {
	ID          uint    `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	DurationMin int     `yaml:"duration_min"`
	Price       float64 `yaml:"price"`
}

// Offering fields left out inherit the service's base values.
type Offering struct {
	ID          uint     `yaml:"id"`
	BarberID    uint     `yaml:"barber_id"`
	ServiceID   uint     `yaml:"service_id"`
	DurationMin *int     `yaml:"duration_min"`
	Price       *float64 `yaml:"price"`
}

type Client struct {
	ID    uint   `yaml:"id"`
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
	Email string `yaml:"email"`
}

// Catalog is a validated fixture converted to models.
type Catalog struct {
	Barbers   []models.Barber
	Services  []models.Service
	Offerings []models.Offering
	Clients   []models.Client
}

func (c *Catalog) OfferingIDs() []uint {
	ids := make([]uint, 0, len(c.Offerings))
	for _, o := range c.Offerings {
		ids = append(ids, o.ID)
	}
	return ids
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a fixture. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}

	return f.Build()
}

// Build validates f and resolves offering defaults. All problems are
// reported together.
func (f *File) Build() (*Catalog, error) {
	var (
		errs []error
		out  Catalog
	)
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	barbers := make(map[uint]bool)
	for i, b := range f.Barbers {
		switch {
		case b.ID == 0:
			fail("barbers[%d]: id is required", i)
			continue
		case barbers[b.ID]:
			fail("barbers[%d]: duplicate id %d", i, b.ID)
			continue
		case b.Name == "":
			fail("barbers[%d]: name is required", i)
		}
		phone, err := validators.NormalizePhone(b.Phone)
		if err != nil {
			fail("barbers[%d]: %v", i, err)
		}
		barbers[b.ID] = true
		out.Barbers = append(out.Barbers, models.Barber{ID: b.ID, Name: b.Name, Phone: phone})
	}

	services := make(map[uint]Service)
	for i, s := range f.Services {
		switch {
		case s.ID == 0:
			fail("services[%d]: id is required", i)
			continue
		case services[s.ID].ID != 0:
			fail("services[%d]: duplicate id %d", i, s.ID)
			continue
		case s.Name == "":
			fail("services[%d]: name is required", i)
		case s.DurationMin <= 0:
			fail("services[%d]: duration_min must be positive", i)
		case s.Price < 0:
			fail("services[%d]: price must not be negative", i)
		}
		services[s.ID] = s
		out.Services = append(out.Services, models.Service{
			ID:              s.ID,
			Name:            s.Name,
			Description:     s.Description,
			BaseDurationMin: s.DurationMin,
			BasePrice:       s.Price,
		})
	}

	offerings := make(map[uint]bool)
	pairs := make(map[[2]uint]bool)
	for i, o := range f.Offerings {
		if o.ID == 0 {
			fail("offerings[%d]: id is required", i)
			continue
		}
		if offerings[o.ID] {
			fail("offerings[%d]: duplicate id %d", i, o.ID)
			continue
		}
		offerings[o.ID] = true

		if !barbers[o.BarberID] {
			fail("offerings[%d]: unknown barber %d", i, o.BarberID)
		}
		svc, ok := services[o.ServiceID]
		if !ok {
			fail("offerings[%d]: unknown service %d", i, o.ServiceID)
		}

		pair := [2]uint{o.BarberID, o.ServiceID}
		if pairs[pair] {
			fail("offerings[%d]: barber %d already offers service %d", i, o.BarberID, o.ServiceID)
		}
		pairs[pair] = true

		duration, price := svc.DurationMin, svc.Price
		if o.DurationMin != nil {
			duration = *o.DurationMin
		}
		if o.Price != nil {
			price = *o.Price
		}
		if ok && duration <= 0 {
			fail("offerings[%d]: duration_min must be positive", i)
		}
		if price < 0 {
			fail("offerings[%d]: price must not be negative", i)
		}

		out.Offerings = append(out.Offerings, models.Offering{
			ID:          o.ID,
			BarberID:    o.BarberID,
			ServiceID:   o.ServiceID,
			DurationMin: duration,
			Price:       price,
		})
	}

	clients := make(map[uint]bool)
	for i, c := range f.Clients {
		switch {
		case c.ID == 0:
			fail("clients[%d]: id is required", i)
			continue
		case clients[c.ID]:
			fail("clients[%d]: duplicate id %d", i, c.ID)
			continue
		case c.Name == "":
			fail("clients[%d]: name is required", i)
		}
		phone, err := validators.NormalizePhone(c.Phone)
		if err != nil {
			fail("clients[%d]: %v", i, err)
		}
		if err := validators.Email(c.Email); err != nil {
			fail("clients[%d]: %v", i, err)
		}
		clients[c.ID] = true
		out.Clients = append(out.Clients, models.Client{ID: c.ID, Name: c.Name, Phone: phone, Email: c.Email})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &out, nil
}
