package wound

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smartwound/smartwound/pkg/pagination"
)

var ErrNotFound = errors.New("wound not found")

// ListFilter narrows wound listings.
type ListFilter struct {
	// UserID scopes the listing to one owner. Nil lists all wounds.
	UserID  *uuid.UUID
	Status  string
	Flagged *bool
}

// Repository abstracts wound persistence.
type Repository interface {
	Create(ctx context.Context, w *Wound) error
	GetByID(ctx context.Context, id uuid.UUID) (*Wound, error)
	Update(ctx context.Context, w *Wound) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, p pagination.Params) ([]*Wound, int, error)

	CreateLog(ctx context.Context, l *Log) error
	ListLogs(ctx context.Context, woundID uuid.UUID) ([]*Log, error)

	CreateComment(ctx context.Context, cm *Comment) error
	ListComments(ctx context.Context, woundID uuid.UUID) ([]*Comment, error)
}
