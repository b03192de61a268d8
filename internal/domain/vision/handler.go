package vision

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler exposes AI-assisted image analysis.
type Handler struct {
	detector LabelDetector
	log      zerolog.Logger
}

func NewHandler(detector LabelDetector, log zerolog.Logger) *Handler {
	return &Handler{detector: detector, log: log.With().Str("component", "vision").Logger()}
}

// RegisterRoutes mounts the analysis endpoint on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/vision/analyze", h.Analyze)
}

// AnalyzeResponse is the analysis payload returned to clients.
type AnalyzeResponse struct {
	Type       string   `json:"type"`
	Severity   string   `json:"severity"`
	Confidence float64  `json:"confidence"`
	RawLabels  []string `json:"raw_labels"`
}

func (h *Handler) Analyze(c echo.Context) error {
	var req struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ImageURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image_url is required.")
	}

	labels, err := h.detector.DetectLabels(c.Request().Context(), req.ImageURL)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusInternalServerError,
				"Image analysis is not configured on this server.")
		}
		h.log.Error().Err(err).Msg("label detection failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to analyze image.")
	}
	if len(labels) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Could not analyze image or no labels found.")
	}

	result := ClassifyLabels(labels)
	resp := AnalyzeResponse{
		Type:     result.Type,
		Severity: result.Severity,
		// The top label's score stands in for overall confidence.
		Confidence: labels[0].Score,
		RawLabels:  make([]string, 0, len(labels)),
	}
	for _, l := range labels {
		resp.RawLabels = append(resp.RawLabels, l.Description)
	}
	return c.JSON(http.StatusOK, resp)
}
