package forum

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smartwound/smartwound/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the read endpoints.
func (h *Handler) RegisterPublicRoutes(api *echo.Group) {
	g := api.Group("/forum")
	g.GET("/posts", h.ListPosts)
	g.GET("/posts/:id", h.GetPost)
}

// RegisterRoutes mounts the authenticated write endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/forum")
	g.POST("/posts", h.CreatePost)
	g.PUT("/posts/:id/flag", h.FlagPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:postId/comments", h.AddComment)
	g.PUT("/comments/:commentId/flag", h.FlagComment)
	g.DELETE("/comments/:commentId", h.DeleteComment)
}

func (h *Handler) CreatePost(c echo.Context) error {
	var req struct {
		WoundType *string `json:"wound_type"`
		Content   string  `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	p, err := h.svc.CreatePost(ctx, auth.UserIDFromContext(ctx), req.WoundType, req.Content)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPosts(c echo.Context) error {
	f := PostFilter{
		WoundType: c.QueryParam("wound_type"),
		Search:    c.QueryParam("search"),
	}
	posts, err := h.svc.ListPosts(c.Request().Context(), f)
	if err != nil {
		return writeError(err)
	}
	if posts == nil {
		posts = []*Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *Handler) GetPost(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	detail, err := h.svc.GetPost(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) FlagPost(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	p, err := h.svc.ToggleFlagPost(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePost(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	ctx := c.Request().Context()

	err = h.svc.DeletePost(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Post deleted."})
}

func (h *Handler) AddComment(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("postId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	cm, err := h.svc.AddComment(ctx, auth.UserIDFromContext(ctx), postID, req.Content)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *Handler) FlagComment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid comment id")
	}
	cm, err := h.svc.ToggleFlagComment(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *Handler) DeleteComment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid comment id")
	}
	ctx := c.Request().Context()

	err = h.svc.DeleteComment(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Comment deleted."})
}

func writeError(err error) error {
	switch {
	case errors.Is(err, ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found.")
	case errors.Is(err, ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found.")
	case errors.Is(err, ErrNotAuthorized):
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized.")
	}
	if msg := err.Error(); strings.Contains(msg, "required") || strings.Contains(msg, "must be") {
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
