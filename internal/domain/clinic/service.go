package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultRadiusKm is the nearby-search radius when the caller gives none.
const DefaultRadiusKm = 10.0

// Service implements the clinic directory. Reads are public; writes are
// restricted to admins at the route level.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "clinic").Logger()}
}

func validate(req UpsertRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be set together")
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return fmt.Errorf("latitude must be between -90 and 90")
		}
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return fmt.Errorf("longitude must be between -180 and 180")
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (*Clinic, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	c := &Clinic{
		ID:        uuid.New(),
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		Phone:     req.Phone,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Str("clinic_id", c.ID.String()).Str("name", c.Name).Msg("clinic created")
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (*Clinic, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	c.Address = req.Address
	c.City = req.City
	c.Country = req.Country
	c.Phone = req.Phone
	c.Latitude = req.Latitude
	c.Longitude = req.Longitude

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f SearchFilter) ([]*Clinic, error) {
	return s.repo.List(ctx, f)
}

// Nearby finds clinics around a point. A non-positive radius falls back to
// the default.
func (s *Service) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]*NearbyClinic, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("latitude and longitude must be valid coordinates")
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return s.repo.Nearby(ctx, lat, lon, radiusKm)
}
