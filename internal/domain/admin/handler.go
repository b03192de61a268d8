package admin

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smartwound/smartwound/internal/domain/forum"
	"github.com/smartwound/smartwound/internal/domain/identity"
	"github.com/smartwound/smartwound/internal/domain/wound"
	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/pkg/pagination"
)

// Handler exposes the admin dashboard: statistics, user management and the
// moderation queue.
type Handler struct {
	stats  StatsRepository
	users  *identity.Service
	forum  forum.Repository
	wounds *wound.Service
}

func NewHandler(stats StatsRepository, users *identity.Service, forumRepo forum.Repository, wounds *wound.Service) *Handler {
	return &Handler{stats: stats, users: users, forum: forumRepo, wounds: wounds}
}

// RegisterRoutes mounts the admin endpoints. Statistics are readable by
// doctors as well; management and moderation stay admin only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/admin")

	g.GET("/stats", h.SystemStats, statsAccess)
	g.GET("/wounds/stats", h.WoundStats, statsAccess)
	g.GET("/clinics/stats", h.ClinicStats, statsAccess)

	mgmt := g.Group("", auth.RequireRole(auth.RoleAdmin))
	mgmt.GET("/users", h.Users)
	mgmt.PUT("/users/:userId/role", h.UpdateUserRole)
	mgmt.GET("/moderation/queue", h.ModerationQueue)
	mgmt.PUT("/wounds/:woundId/flag", h.FlagWound)
}

// statsAccess admits roles with aggregate statistics read access.
func statsAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !auth.RoleFromContext(c.Request().Context()).CanViewStats() {
			return echo.NewHTTPError(http.StatusForbidden, "required role: doctor or admin")
		}
		return next(c)
	}
}

func (h *Handler) SystemStats(c echo.Context) error {
	stats, err := h.stats.SystemStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch system statistics.")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) Users(c echo.Context) error {
	p := pagination.FromContext(c)
	users, total, err := h.users.ListUsers(c.Request().Context(), p)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users.")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, p.Limit, p.Offset))
}

func (h *Handler) UpdateUserRole(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role.")
	}

	u, err := h.users.SetRole(c.Request().Context(), userID, role)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user role.")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) WoundStats(c echo.Context) error {
	stats, err := h.stats.WoundStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch wound statistics.")
	}
	return c.JSON(http.StatusOK, stats)
}

// ModerationQueue returns all flagged content: wounds, forum posts and
// forum comments.
func (h *Handler) ModerationQueue(c echo.Context) error {
	ctx := c.Request().Context()

	wounds, err := h.wounds.ListFlagged(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch moderation queue.")
	}
	flagged := true
	posts, err := h.forum.ListPosts(ctx, forum.PostFilter{Flagged: &flagged})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch moderation queue.")
	}
	comments, err := h.forum.ListFlaggedComments(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch moderation queue.")
	}

	if wounds == nil {
		wounds = []*wound.Wound{}
	}
	if posts == nil {
		posts = []*forum.Post{}
	}
	if comments == nil {
		comments = []*forum.Comment{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"wounds":   wounds,
		"posts":    posts,
		"comments": comments,
	})
}

// FlagWound sets or clears a wound's moderation flag.
func (h *Handler) FlagWound(c echo.Context) error {
	id, err := uuid.Parse(c.Param("woundId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid wound id")
	}
	var req struct {
		Flagged bool `json:"flagged"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	w, err := h.wounds.SetFlagged(c.Request().Context(), id, req.Flagged)
	if err != nil {
		if errors.Is(err, wound.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wound not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update wound flag.")
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) ClinicStats(c echo.Context) error {
	stats, err := h.stats.ClinicStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch clinic statistics.")
	}
	return c.JSON(http.StatusOK, stats)
}
