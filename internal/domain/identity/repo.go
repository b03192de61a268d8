package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smartwound/smartwound/pkg/pagination"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository abstracts user persistence.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, p pagination.Params) ([]*User, int, error)
}
