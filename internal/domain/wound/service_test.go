package wound

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/pkg/pagination"
)

type memRepo struct {
	wounds   map[uuid.UUID]*Wound
	logs     map[uuid.UUID][]*Log
	comments map[uuid.UUID][]*Comment
}

func newMemRepo() *memRepo {
	return &memRepo{
		wounds:   make(map[uuid.UUID]*Wound),
		logs:     make(map[uuid.UUID][]*Log),
		comments: make(map[uuid.UUID][]*Comment),
	}
}

func (m *memRepo) Create(_ context.Context, w *Wound) error {
	cp := *w
	m.wounds[w.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Wound, error) {
	w, ok := m.wounds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memRepo) Update(_ context.Context, w *Wound) error {
	if _, ok := m.wounds[w.ID]; !ok {
		return ErrNotFound
	}
	cp := *w
	m.wounds[w.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.wounds[id]; !ok {
		return ErrNotFound
	}
	delete(m.wounds, id)
	delete(m.logs, id)
	delete(m.comments, id)
	return nil
}

func (m *memRepo) List(_ context.Context, f ListFilter, _ pagination.Params) ([]*Wound, int, error) {
	var out []*Wound
	for _, w := range m.wounds {
		if f.UserID != nil && w.UserID != *f.UserID {
			continue
		}
		if f.Status != "" && w.Status != f.Status {
			continue
		}
		if f.Flagged != nil && w.Flagged != *f.Flagged {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memRepo) CreateLog(_ context.Context, l *Log) error {
	cp := *l
	m.logs[l.WoundID] = append(m.logs[l.WoundID], &cp)
	return nil
}

func (m *memRepo) ListLogs(_ context.Context, woundID uuid.UUID) ([]*Log, error) {
	return m.logs[woundID], nil
}

func (m *memRepo) CreateComment(_ context.Context, cm *Comment) error {
	cp := *cm
	m.comments[cm.WoundID] = append(m.comments[cm.WoundID], &cp)
	return nil
}

func (m *memRepo) ListComments(_ context.Context, woundID uuid.UUID) ([]*Comment, error) {
	return m.comments[woundID], nil
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(newMemRepo(), zerolog.Nop())
	userID := uuid.New()

	w, err := svc.Create(context.Background(), userID, CreateRequest{Type: "cut"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.Status != StatusOpen {
		t.Errorf("expected open status, got %q", w.Status)
	}
	if w.Severity != SeverityUnknown {
		t.Errorf("expected unknown severity, got %q", w.Severity)
	}

	if _, err := svc.Create(context.Background(), userID, CreateRequest{}); err == nil {
		t.Error("expected error for missing type")
	}
	if _, err := svc.Create(context.Background(), userID, CreateRequest{Type: "cut", Severity: "catastrophic"}); err == nil {
		t.Error("expected error for invalid severity")
	}
}

func TestOwnershipScoping(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())
	owner := uuid.New()
	stranger := uuid.New()

	w, err := svc.Create(context.Background(), owner, CreateRequest{Type: "burn", Severity: SeverityModerate})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another user's lookup reports not found, not forbidden.
	if _, err := svc.Get(context.Background(), stranger, auth.RoleUser, w.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for stranger, got %v", err)
	}
	// Doctors and admins can read any wound.
	if _, err := svc.Get(context.Background(), stranger, auth.RoleDoctor, w.ID); err != nil {
		t.Errorf("doctor read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), stranger, auth.RoleAdmin, w.ID); err != nil {
		t.Errorf("admin read failed: %v", err)
	}

	// A doctor can read but not delete someone else's wound.
	if err := svc.Delete(context.Background(), stranger, auth.RoleDoctor, w.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for doctor delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), owner, auth.RoleUser, w.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}

func TestListScopedByRole(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())
	alice := uuid.New()
	bob := uuid.New()

	for _, uid := range []uuid.UUID{alice, alice, bob} {
		if _, err := svc.Create(context.Background(), uid, CreateRequest{Type: "cut"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, _, err := svc.List(context.Background(), alice, auth.RoleUser, "", pagination.Params{Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 wounds for alice, got %d", len(mine))
	}

	all, _, err := svc.List(context.Background(), alice, auth.RoleDoctor, "", pagination.Params{Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 wounds for doctor, got %d", len(all))
	}
}

func TestStatusTransitionsUnconstrained(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())
	owner := uuid.New()

	w, err := svc.Create(context.Background(), owner, CreateRequest{Type: "cut"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// closed -> open is allowed. Transitions are not a state machine.
	for _, status := range []string{StatusClosed, StatusOpen, StatusInfected, StatusHealing} {
		st := status
		if _, err := svc.Update(context.Background(), owner, auth.RoleUser, w.ID, UpdateRequest{Status: &st}); err != nil {
			t.Errorf("transition to %q failed: %v", status, err)
		}
	}

	bad := "cured"
	if _, err := svc.Update(context.Background(), owner, auth.RoleUser, w.ID, UpdateRequest{Status: &bad}); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestAddLogTouchesWound(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())
	owner := uuid.New()

	w, err := svc.Create(context.Background(), owner, CreateRequest{Type: "cut"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stale := time.Now().Add(-96 * time.Hour)
	repo.wounds[w.ID].UpdatedAt = stale

	notes := "healing nicely"
	l, err := svc.AddLog(context.Background(), owner, auth.RoleUser, w.ID, nil, &notes)
	if err != nil {
		t.Fatalf("AddLog: %v", err)
	}

	after, _ := repo.GetByID(context.Background(), w.ID)
	if !after.UpdatedAt.After(stale) {
		t.Error("expected log append to advance the wound's updated_at")
	}
	if l.WoundID != w.ID {
		t.Error("log attached to wrong wound")
	}

	// Empty logs are rejected.
	if _, err := svc.AddLog(context.Background(), owner, auth.RoleUser, w.ID, nil, nil); err == nil {
		t.Error("expected error for empty log")
	}
	// Doctors cannot log on behalf of the owner.
	if _, err := svc.AddLog(context.Background(), uuid.New(), auth.RoleDoctor, w.ID, nil, &notes); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for non-owner log, got %v", err)
	}
}

func TestComments(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())
	owner := uuid.New()
	doctor := uuid.New()

	w, err := svc.Create(context.Background(), owner, CreateRequest{Type: "ulcer", Severity: SeveritySevere})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.AddComment(context.Background(), doctor, w.ID, "please see a clinician"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := svc.AddComment(context.Background(), doctor, w.ID, ""); err == nil {
		t.Error("expected error for empty comment")
	}

	comments, err := svc.ListComments(context.Background(), owner, auth.RoleUser, w.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("expected 1 comment, got %d", len(comments))
	}
}
