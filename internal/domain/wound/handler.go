package wound

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the wound endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/wounds")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	g.POST("/:woundId/logs", h.AddLog)
	g.GET("/:woundId/logs", h.ListLogs)

	g.POST("/:woundId/comments", h.AddComment,
		auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
	g.GET("/:woundId/comments", h.ListComments)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	userID := auth.UserIDFromContext(c.Request().Context())

	w, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	ctx := c.Request().Context()

	w, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := pagination.FromContext(c)

	wounds, total, err := h.svc.List(ctx, auth.UserIDFromContext(ctx),
		auth.RoleFromContext(ctx), c.QueryParam("status"), p)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(wounds, total, p.Limit, p.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	w, err := h.svc.Update(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	ctx := c.Request().Context()

	if err := h.svc.Delete(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddLog(c echo.Context) error {
	woundID, err := uuid.Parse(c.Param("woundId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	var req struct {
		PhotoURL *string `json:"photo_url"`
		Notes    *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	l, err := h.svc.AddLog(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx),
		woundID, req.PhotoURL, req.Notes)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) ListLogs(c echo.Context) error {
	woundID, err := uuid.Parse(c.Param("woundId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	ctx := c.Request().Context()

	logs, err := h.svc.ListLogs(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), woundID)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) AddComment(c echo.Context) error {
	woundID, err := uuid.Parse(c.Param("woundId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	cm, err := h.svc.AddComment(ctx, auth.UserIDFromContext(ctx), woundID, req.Comment)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *Handler) ListComments(c echo.Context) error {
	woundID, err := uuid.Parse(c.Param("woundId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	ctx := c.Request().Context()

	comments, err := h.svc.ListComments(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), woundID)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

func writeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if msg := err.Error(); strings.Contains(msg, "required") || strings.Contains(msg, "must be") {
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
