package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("clinic not found")

// SearchFilter narrows clinic listings.
type SearchFilter struct {
	// Search matches name or address, case-insensitively.
	Search  string
	City    string
	Country string
}

// Repository abstracts clinic persistence.
type Repository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f SearchFilter) ([]*Clinic, error)

	// Nearby returns clinics within radiusKm of the point, nearest first.
	// Clinics without coordinates are excluded.
	Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]*NearbyClinic, error)
}
