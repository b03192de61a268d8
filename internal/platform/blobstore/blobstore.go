// Package blobstore stores wound and profile photos. It defines the Store
// interface, a MinIO implementation for real deployments, an in-memory store
// for tests and development, and the multipart upload handler.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/smartwound/smartwound/internal/platform/auth"
)

var (
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// MaxPhotoSize is the maximum allowed upload size in bytes (10 MB).
const MaxPhotoSize = 10 * 1024 * 1024

// AllowedContentTypes lists the accepted photo MIME types.
var AllowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Object describes a stored photo.
type Object struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists photo bytes under a key and returns a public URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// MinIO store
// ---------------------------------------------------------------------------

// MinioConfig configures the MinIO-backed store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the externally reachable base URL for objects. When
	// empty, URLs are built from the endpoint.
	PublicURL string
	UseSSL    bool
}

type minioStore struct {
	client *minio.Client
	cfg    MinioConfig
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &minioStore{client: client, cfg: cfg}, nil
}

func (s *minioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	hasher := sha256.New()
	tee := io.TeeReader(r, hasher)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, tee, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &Object{
		Key:         key,
		URL:         s.urlFor(key),
		ContentType: contentType,
		Size:        size,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		CreatedAt:   time.Now(),
	}, nil
}

func (s *minioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *minioStore) urlFor(key string) string {
	base := s.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if s.cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket)
	}
	return strings.TrimRight(base, "/") + "/" + key
}

// ---------------------------------------------------------------------------
// Memory store
// ---------------------------------------------------------------------------

// MemoryStore holds objects in memory. Used in tests and when no MinIO
// endpoint is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://photos"
	}
	return &MemoryStore{objects: make(map[string][]byte), baseURL: baseURL}
}

func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	var buf bytes.Buffer
	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(&buf, hasher), r)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	s.mu.Lock()
	s.objects[key] = buf.Bytes()
	s.mu.Unlock()

	return &Object{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		ContentType: contentType,
		Size:        n,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		CreatedAt:   time.Now(),
	}, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("object %s not found", key)
	}
	delete(s.objects, key)
	return nil
}

// Get returns a stored object's bytes, for tests.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}

// ---------------------------------------------------------------------------
// Upload handler
// ---------------------------------------------------------------------------

// Handler serves the photo upload endpoint.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/upload", h.Upload)
}

// Upload accepts a multipart "image" field, validates type and size, and
// stores it under a per-user key.
func (h *Handler) Upload(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fileHeader.Size > MaxPhotoSize {
		return echo.NewHTTPError(http.StatusBadRequest, ErrFileTooLarge.Error())
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := AllowedContentTypes[contentType]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidContentType.Error())
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer f.Close()

	key := ObjectKey(userID, ext)
	obj, err := h.store.Put(c.Request().Context(), key, f, fileHeader.Size, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store photo")
	}

	return c.JSON(http.StatusCreated, obj)
}

// ObjectKey builds the storage key for a new upload:
// photos/<user>/<yyyy/mm/dd>/<uuid><ext>.
func ObjectKey(userID uuid.UUID, ext string) string {
	return path.Join("photos", userID.String(), time.Now().Format("2006/01/02"), uuid.NewString()+ext)
}
