package smart

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smartwound/smartwound/internal/platform/auth"
)

// JobTokenHeader carries the shared scheduler secret on run-jobs calls.
const JobTokenHeader = "X-Job-Token"

// Handler exposes the reminder, escalation and sweep endpoints.
type Handler struct {
	svc      *Service
	engine   *Engine
	issuer   *auth.TokenIssuer
	jobToken string
}

func NewHandler(svc *Service, engine *Engine, issuer *auth.TokenIssuer, jobToken string) *Handler {
	return &Handler{svc: svc, engine: engine, issuer: issuer, jobToken: jobToken}
}

// RegisterRoutes mounts the authenticated endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/smart")
	g.GET("/reminders/me", h.MyReminders)
	g.PUT("/reminders/:id/complete", h.CompleteReminder)
	g.GET("/escalations", h.Escalations)
	g.PUT("/escalations/:id", h.ReviewEscalation,
		auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
}

// RegisterJobRoutes mounts the sweep trigger on an unauthenticated group; it
// does its own scheduler-token or admin-bearer check.
func (h *Handler) RegisterJobRoutes(api *echo.Group) {
	api.POST("/smart/run-jobs", h.RunJobs)
}

func (h *Handler) MyReminders(c echo.Context) error {
	ctx := c.Request().Context()
	reminders, err := h.svc.MyReminders(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch reminders.")
	}
	if reminders == nil {
		reminders = []*Reminder{}
	}
	return c.JSON(http.StatusOK, reminders)
}

func (h *Handler) CompleteReminder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reminder id")
	}
	ctx := c.Request().Context()

	if err := h.svc.CompleteReminder(ctx, id, auth.UserIDFromContext(ctx)); err != nil {
		if errors.Is(err, ErrReminderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Reminder not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update reminder.")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Reminder marked as complete."})
}

func (h *Handler) Escalations(c echo.Context) error {
	ctx := c.Request().Context()
	if !auth.RoleFromContext(ctx).CanReviewEscalations() {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to view escalations.")
	}

	escalations, err := h.svc.PendingEscalations(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch escalations.")
	}
	if escalations == nil {
		escalations = []*EscalationDetail{}
	}
	return c.JSON(http.StatusOK, escalations)
}

func (h *Handler) ReviewEscalation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid escalation id")
	}
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	esc, err := h.svc.ReviewEscalation(ctx, id, auth.UserIDFromContext(ctx), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEscalationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case strings.Contains(err.Error(), "must be"), strings.Contains(err.Error(), "already resolved"):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, esc)
}

// RunJobs triggers a sweep. Access: scheduler token when configured, or an
// admin bearer token.
func (h *Handler) RunJobs(c echo.Context) error {
	if !h.authorizeJobRun(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	res, err := h.engine.RunSweep(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			return echo.NewHTTPError(http.StatusConflict, "Sweep already in progress.")
		}
		return c.String(http.StatusInternalServerError, "Cron job execution failed.")
	}

	c.Response().Header().Set("X-Reminders-Created", strconv.Itoa(res.RemindersCreated))
	c.Response().Header().Set("X-Escalations-Created", strconv.Itoa(res.EscalationsCreated))
	return c.String(http.StatusOK, "Cron jobs executed successfully.")
}

func (h *Handler) authorizeJobRun(c echo.Context) bool {
	if h.jobToken != "" && c.Request().Header.Get(JobTokenHeader) == h.jobToken {
		return true
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}
	claims, err := h.issuer.Verify(parts[1])
	if err != nil {
		return false
	}
	role, err := auth.ParseRole(claims.Role)
	if err != nil {
		return false
	}
	return role.CanAdminister()
}
