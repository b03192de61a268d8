package clinic

import (
	"context"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type memRepo struct {
	clinics map[uuid.UUID]*Clinic
}

func newMemRepo() *memRepo {
	return &memRepo{clinics: make(map[uuid.UUID]*Clinic)}
}

func (m *memRepo) Create(_ context.Context, c *Clinic) error {
	cp := *c
	m.clinics[c.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Clinic, error) {
	c, ok := m.clinics[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) Update(_ context.Context, c *Clinic) error {
	if _, ok := m.clinics[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.clinics[c.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.clinics[id]; !ok {
		return ErrNotFound
	}
	delete(m.clinics, id)
	return nil
}

func (m *memRepo) List(_ context.Context, f SearchFilter) ([]*Clinic, error) {
	var out []*Clinic
	for _, c := range m.clinics {
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.City != "" && (c.City == nil || *c.City != f.City) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) Nearby(_ context.Context, lat, lon, radiusKm float64) ([]*NearbyClinic, error) {
	var out []*NearbyClinic
	for _, c := range m.clinics {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		d := HaversineKm(lat, lon, *c.Latitude, *c.Longitude)
		if d > radiusKm {
			continue
		}
		out = append(out, &NearbyClinic{Clinic: *c, DistanceKm: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func TestHaversineKm(t *testing.T) {
	// Berlin to Hamburg is roughly 255 km.
	d := HaversineKm(52.52, 13.405, 53.551, 9.993)
	if math.Abs(d-255) > 5 {
		t.Errorf("Berlin-Hamburg distance = %.1f km, want ~255", d)
	}
	if d := HaversineKm(52.52, 13.405, 52.52, 13.405); d != 0 {
		t.Errorf("zero distance = %v, want 0", d)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemRepo(), zerolog.Nop())

	if _, err := svc.Create(context.Background(), UpsertRequest{}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := svc.Create(context.Background(), UpsertRequest{
		Name: "City Clinic", Latitude: ptr(52.0),
	}); err == nil {
		t.Error("expected error for latitude without longitude")
	}
	if _, err := svc.Create(context.Background(), UpsertRequest{
		Name: "City Clinic", Latitude: ptr(120.0), Longitude: ptr(13.0),
	}); err == nil {
		t.Error("expected error for out-of-range latitude")
	}

	c, err := svc.Create(context.Background(), UpsertRequest{
		Name: "City Clinic", City: ptr("Berlin"),
		Latitude: ptr(52.52), Longitude: ptr(13.405),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("expected an id")
	}
}

func TestNearbyOrdersByDistance(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())

	mk := func(name string, lat, lon float64) {
		t.Helper()
		if _, err := svc.Create(context.Background(), UpsertRequest{
			Name: name, Latitude: ptr(lat), Longitude: ptr(lon),
		}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	mk("Near", 52.53, 13.41)
	mk("Far", 52.60, 13.60)
	mk("Out of range", 53.55, 9.99) // Hamburg
	if _, err := svc.Create(context.Background(), UpsertRequest{Name: "No coords"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Nearby(context.Background(), 52.52, 13.405, 0)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 clinic within default radius, got %d", len(got))
	}
	if got[0].Name != "Near" {
		t.Errorf("nearest = %q, want Near", got[0].Name)
	}

	wide, err := svc.Nearby(context.Background(), 52.52, 13.405, 50)
	if err != nil {
		t.Fatalf("Nearby wide: %v", err)
	}
	if len(wide) != 2 || wide[0].Name != "Near" || wide[1].Name != "Far" {
		t.Errorf("wide search order wrong: %v", names(wide))
	}

	if _, err := svc.Nearby(context.Background(), 95, 0, 10); err == nil {
		t.Error("expected error for invalid coordinates")
	}
}

func names(cs []*NearbyClinic) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())

	c, err := svc.Create(context.Background(), UpsertRequest{Name: "Old Name"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	upd, err := svc.Update(context.Background(), c.ID, UpsertRequest{Name: "New Name", Phone: ptr("123")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Name != "New Name" || upd.Phone == nil || *upd.Phone != "123" {
		t.Errorf("update not applied: %+v", upd)
	}

	if _, err := svc.Update(context.Background(), uuid.New(), UpsertRequest{Name: "x"}); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), c.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
