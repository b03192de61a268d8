package forum

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartwound/smartwound/internal/platform/auth"
)

type memRepo struct {
	posts    map[uuid.UUID]*Post
	comments map[uuid.UUID]*Comment
}

func newMemRepo() *memRepo {
	return &memRepo{
		posts:    make(map[uuid.UUID]*Post),
		comments: make(map[uuid.UUID]*Comment),
	}
}

func (m *memRepo) CreatePost(_ context.Context, p *Post) error {
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepo) GetPost(_ context.Context, id uuid.UUID) (*PostDetail, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	detail := &PostDetail{Post: *p, Comments: []*Comment{}}
	for _, cm := range m.comments {
		if cm.PostID == id {
			cp := *cm
			detail.Comments = append(detail.Comments, &cp)
		}
	}
	return detail, nil
}

func (m *memRepo) ListPosts(_ context.Context, f PostFilter) ([]*Post, error) {
	var out []*Post
	for _, p := range m.posts {
		if f.WoundType != "" && (p.WoundType == nil || *p.WoundType != f.WoundType) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Content), strings.ToLower(f.Search)) {
			continue
		}
		if f.Flagged != nil && p.Flagged != *f.Flagged {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) UpdatePost(_ context.Context, p *Post) error {
	if _, ok := m.posts[p.ID]; !ok {
		return ErrPostNotFound
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepo) DeletePost(_ context.Context, id uuid.UUID) error {
	if _, ok := m.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memRepo) CreateComment(_ context.Context, cm *Comment) error {
	cp := *cm
	m.comments[cm.ID] = &cp
	return nil
}

func (m *memRepo) GetComment(_ context.Context, id uuid.UUID) (*Comment, error) {
	cm, ok := m.comments[id]
	if !ok {
		return nil, ErrCommentNotFound
	}
	cp := *cm
	return &cp, nil
}

func (m *memRepo) UpdateComment(_ context.Context, cm *Comment) error {
	if _, ok := m.comments[cm.ID]; !ok {
		return ErrCommentNotFound
	}
	cp := *cm
	m.comments[cm.ID] = &cp
	return nil
}

func (m *memRepo) DeleteComment(_ context.Context, id uuid.UUID) error {
	if _, ok := m.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *memRepo) ListFlaggedComments(_ context.Context) ([]*Comment, error) {
	var out []*Comment
	for _, cm := range m.comments {
		if cm.Flagged {
			cp := *cm
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestCreatePostValidation(t *testing.T) {
	svc := NewService(newMemRepo(), zerolog.Nop())
	userID := uuid.New()

	if _, err := svc.CreatePost(context.Background(), userID, nil, ""); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := svc.CreatePost(context.Background(), userID, nil, strings.Repeat("a", maxContentLength+1)); err == nil {
		t.Error("expected error for oversized content")
	}

	p, err := svc.CreatePost(context.Background(), userID, nil, "does anyone else heal slowly?")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.Flagged {
		t.Error("new post should not be flagged")
	}
}

func TestFlagToggles(t *testing.T) {
	svc := NewService(newMemRepo(), zerolog.Nop())
	p, err := svc.CreatePost(context.Background(), uuid.New(), nil, "hello")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	flagged, err := svc.ToggleFlagPost(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ToggleFlagPost: %v", err)
	}
	if !flagged.Flagged {
		t.Error("expected post flagged after first toggle")
	}

	unflagged, err := svc.ToggleFlagPost(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ToggleFlagPost: %v", err)
	}
	if unflagged.Flagged {
		t.Error("expected post unflagged after second toggle")
	}
}

func TestDeletePostAuthorization(t *testing.T) {
	svc := NewService(newMemRepo(), zerolog.Nop())
	author := uuid.New()

	p, err := svc.CreatePost(context.Background(), author, nil, "hello")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := svc.DeletePost(context.Background(), uuid.New(), auth.RoleUser, p.ID); err != ErrNotAuthorized {
		t.Errorf("expected ErrNotAuthorized for stranger, got %v", err)
	}
	// Doctors are not moderators.
	if err := svc.DeletePost(context.Background(), uuid.New(), auth.RoleDoctor, p.ID); err != ErrNotAuthorized {
		t.Errorf("expected ErrNotAuthorized for doctor, got %v", err)
	}
	if err := svc.DeletePost(context.Background(), uuid.New(), auth.RoleAdmin, p.ID); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}

	p2, err := svc.CreatePost(context.Background(), author, nil, "hello again")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := svc.DeletePost(context.Background(), author, auth.RoleUser, p2.ID); err != nil {
		t.Errorf("author delete failed: %v", err)
	}
}

func TestCommentsFollowPost(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, zerolog.Nop())
	author := uuid.New()

	p, err := svc.CreatePost(context.Background(), author, nil, "hello")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if _, err := svc.AddComment(context.Background(), uuid.New(), uuid.New(), "hi"); err != ErrPostNotFound {
		t.Errorf("expected ErrPostNotFound for missing post, got %v", err)
	}

	cm, err := svc.AddComment(context.Background(), uuid.New(), p.ID, "get well soon")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	detail, err := svc.GetPost(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].ID != cm.ID {
		t.Errorf("expected the comment on the post, got %v", detail.Comments)
	}

	if err := svc.DeleteComment(context.Background(), uuid.New(), auth.RoleUser, cm.ID); err != ErrNotAuthorized {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
	if err := svc.DeleteComment(context.Background(), cm.UserID, auth.RoleUser, cm.ID); err != nil {
		t.Errorf("author comment delete failed: %v", err)
	}
}
