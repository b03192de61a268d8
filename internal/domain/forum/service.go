package forum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartwound/smartwound/internal/platform/auth"
)

// ErrNotAuthorized reports a delete attempt by someone who is neither the
// author nor an admin.
var ErrNotAuthorized = errors.New("not authorized")

const maxContentLength = 5000

// Service implements the community forum. Reads are public; writes require
// a logged-in user. Deletes are author-or-admin.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "forum").Logger()}
}

func (s *Service) CreatePost(ctx context.Context, userID uuid.UUID, woundType *string, content string) (*Post, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if len(content) > maxContentLength {
		return nil, fmt.Errorf("content must be at most %d characters", maxContentLength)
	}

	p := &Post{
		ID:        uuid.New(),
		UserID:    userID,
		WoundType: woundType,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*PostDetail, error) {
	return s.repo.GetPost(ctx, id)
}

func (s *Service) ListPosts(ctx context.Context, f PostFilter) ([]*Post, error) {
	return s.repo.ListPosts(ctx, f)
}

// ToggleFlagPost flips a post's moderation flag and returns the new state.
func (s *Service) ToggleFlagPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	detail, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	p := detail.Post
	p.Flagged = !p.Flagged
	if err := s.repo.UpdatePost(ctx, &p); err != nil {
		return nil, err
	}
	s.log.Info().Str("post_id", id.String()).Bool("flagged", p.Flagged).Msg("post flag toggled")
	return &p, nil
}

// DeletePost removes a post. Authors delete their own; admins delete any.
func (s *Service) DeletePost(ctx context.Context, callerID uuid.UUID, role auth.Role, id uuid.UUID) error {
	detail, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if detail.UserID != callerID && !role.CanModerate() {
		return ErrNotAuthorized
	}
	return s.repo.DeletePost(ctx, id)
}

func (s *Service) AddComment(ctx context.Context, userID, postID uuid.UUID, content string) (*Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if len(content) > maxContentLength {
		return nil, fmt.Errorf("content must be at most %d characters", maxContentLength)
	}
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	cm := &Comment{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateComment(ctx, cm); err != nil {
		return nil, err
	}
	return s.repo.GetComment(ctx, cm.ID)
}

// ToggleFlagComment flips a comment's moderation flag.
func (s *Service) ToggleFlagComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	cm, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	cm.Flagged = !cm.Flagged
	if err := s.repo.UpdateComment(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

// DeleteComment removes a comment. Authors delete their own; admins delete
// any.
func (s *Service) DeleteComment(ctx context.Context, callerID uuid.UUID, role auth.Role, id uuid.UUID) error {
	cm, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if cm.UserID != callerID && !role.CanModerate() {
		return ErrNotAuthorized
	}
	return s.repo.DeleteComment(ctx, id)
}
