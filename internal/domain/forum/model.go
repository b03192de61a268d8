package forum

import (
	"time"

	"github.com/google/uuid"
)

// Author is the slice of a user shown on posts and comments.
type Author struct {
	ID       uuid.UUID `json:"id"`
	FullName *string   `json:"full_name,omitempty"`
}

// Post is a community forum entry.
type Post struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	WoundType *string   `db:"wound_type" json:"wound_type,omitempty"`
	Content   string    `db:"content" json:"content"`
	Flagged   bool      `db:"flagged" json:"flagged"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author *Author `db:"-" json:"user,omitempty"`
}

// Comment is a reply on a post.
type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PostID    uuid.UUID `db:"post_id" json:"post_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	Flagged   bool      `db:"flagged" json:"flagged"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author *Author `db:"-" json:"user,omitempty"`
}

// PostDetail is a post with its comment thread.
type PostDetail struct {
	Post
	Comments []*Comment `json:"comments"`
}

// PostFilter narrows post listings.
type PostFilter struct {
	WoundType string
	Search    string
	Flagged   *bool
}
