package joblock

import (
	"context"
	"testing"
)

func TestProcessLocker_Exclusive(t *testing.T) {
	l := NewProcessLocker()

	release, err := l.Acquire(context.Background(), "care-sweep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := l.Acquire(context.Background(), "care-sweep"); err != ErrAlreadyLocked {
		t.Errorf("expected ErrAlreadyLocked, got %v", err)
	}

	release()

	release2, err := l.Acquire(context.Background(), "care-sweep")
	if err != nil {
		t.Fatalf("expected lock to be free after release, got %v", err)
	}
	release2()
}

func TestProcessLocker_IndependentNames(t *testing.T) {
	l := NewProcessLocker()

	r1, err := l.Acquire(context.Background(), "care-sweep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r1()

	r2, err := l.Acquire(context.Background(), "other-job")
	if err != nil {
		t.Fatalf("expected different names not to contend, got %v", err)
	}
	r2()
}
