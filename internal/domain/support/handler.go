// Package support relays user support requests to the operations inbox.
package support

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/internal/platform/notification"
)

// Handler forwards support messages by email.
type Handler struct {
	mailer       *notification.Mailer
	supportEmail string
	log          zerolog.Logger
}

func NewHandler(mailer *notification.Mailer, supportEmail string, log zerolog.Logger) *Handler {
	return &Handler{
		mailer:       mailer,
		supportEmail: supportEmail,
		log:          log.With().Str("component", "support").Logger(),
	}
}

// RegisterRoutes mounts the support endpoint on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/support/email", h.SendEmail)
}

func (h *Handler) SendEmail(c echo.Context) error {
	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Subject == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Subject and message are required.")
	}
	if h.supportEmail == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "Support email is not configured.")
	}

	ctx := c.Request().Context()
	from := auth.EmailFromContext(ctx)
	data := map[string]string{
		"subject": req.Subject,
		"from":    fmt.Sprintf("%s (%s)", from, auth.UserIDFromContext(ctx)),
		"message": req.Message,
	}
	if err := h.mailer.Send(ctx, h.supportEmail, "support-relay", data); err != nil {
		h.log.Error().Err(err).Msg("support email failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send support email.")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Support email sent successfully!"})
}
