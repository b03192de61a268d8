package forum

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// Repository abstracts forum persistence. Listing queries attach authors.
type Repository interface {
	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*PostDetail, error)
	ListPosts(ctx context.Context, f PostFilter) ([]*Post, error)
	UpdatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	CreateComment(ctx context.Context, cm *Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	UpdateComment(ctx context.Context, cm *Comment) error
	DeleteComment(ctx context.Context, id uuid.UUID) error
	ListFlaggedComments(ctx context.Context) ([]*Comment, error)
}
