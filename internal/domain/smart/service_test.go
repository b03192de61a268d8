package smart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestCompleteReminderOwnership(t *testing.T) {
	rems := newMemReminderRepo()
	svc := NewService(rems, newMemEscalationRepo(), zerolog.Nop())
	owner := uuid.New()

	rem := &Reminder{ID: uuid.New(), UserID: owner, Message: "check in"}
	if ok, _ := rems.CreateIfNoneIncomplete(context.Background(), rem); !ok {
		t.Fatal("seed reminder not created")
	}

	// Someone else's completion attempt reads as not found.
	if err := svc.CompleteReminder(context.Background(), rem.ID, uuid.New()); err != ErrReminderNotFound {
		t.Errorf("expected ErrReminderNotFound, got %v", err)
	}
	if err := svc.CompleteReminder(context.Background(), rem.ID, owner); err != nil {
		t.Errorf("owner completion failed: %v", err)
	}

	left, err := svc.MyReminders(context.Background(), owner)
	if err != nil {
		t.Fatalf("MyReminders: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected no outstanding reminders, got %d", len(left))
	}
}

func TestReviewEscalationWorkflow(t *testing.T) {
	escs := newMemEscalationRepo()
	svc := NewService(newMemReminderRepo(), escs, zerolog.Nop())
	reviewer := uuid.New()

	esc := &Escalation{ID: uuid.New(), WoundID: uuid.New(), Reason: ReasonSevere, Status: EscalationPending}
	if ok, _ := escs.CreateIfAbsent(context.Background(), esc); !ok {
		t.Fatal("seed escalation not created")
	}

	notes := "contacted patient"
	reviewed, err := svc.ReviewEscalation(context.Background(), esc.ID, reviewer, ReviewRequest{
		Status: EscalationReviewed,
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != EscalationReviewed {
		t.Errorf("status = %q, want reviewed", reviewed.Status)
	}
	if reviewed.ResolvedAt != nil {
		t.Error("reviewed escalation should not be resolved")
	}

	resolved, err := svc.ReviewEscalation(context.Background(), esc.ID, reviewer, ReviewRequest{
		Status: EscalationResolved,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ResolvedAt == nil || resolved.ResolvedBy == nil || *resolved.ResolvedBy != reviewer {
		t.Error("resolution metadata missing")
	}

	// Resolving again keeps the original resolver.
	other := uuid.New()
	again, err := svc.ReviewEscalation(context.Background(), esc.ID, other, ReviewRequest{
		Status: EscalationResolved,
	})
	if err != nil {
		t.Fatalf("repeat resolve: %v", err)
	}
	if *again.ResolvedBy != reviewer {
		t.Error("repeated resolve overwrote the original resolver")
	}

	// Resolved escalations cannot drop back to reviewed.
	if _, err := svc.ReviewEscalation(context.Background(), esc.ID, reviewer, ReviewRequest{
		Status: EscalationReviewed,
	}); err == nil {
		t.Error("expected error moving resolved back to reviewed")
	}

	if _, err := svc.ReviewEscalation(context.Background(), esc.ID, reviewer, ReviewRequest{
		Status: "pending",
	}); err == nil {
		t.Error("expected error for pending status")
	}
	if _, err := svc.ReviewEscalation(context.Background(), uuid.New(), reviewer, ReviewRequest{
		Status: EscalationResolved,
	}); err != ErrEscalationNotFound {
		t.Errorf("expected ErrEscalationNotFound, got %v", err)
	}
}
