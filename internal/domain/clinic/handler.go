package clinic

import (
	"errors"
	"net/http"
	"strconv"
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

// RegisterPublicRoutes mounts the read endpoints; no authentication needed.
func (h *Handler) RegisterPublicRoutes(api *echo.Group) {
	g := api.Group("/clinics")
	g.GET("", h.List)
	g.GET("/nearby", h.Nearby)
	g.GET("/:id", h.Get)
}

// RegisterRoutes mounts the admin-only write endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/clinics", auth.RequireRole(auth.RoleAdmin))
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	f := SearchFilter{
		Search:  c.QueryParam("search"),
		City:    c.QueryParam("city"),
		Country: c.QueryParam("country"),
	}
	clinics, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(err)
	}
	if clinics == nil {
		clinics = []*Clinic{}
	}
	return c.JSON(http.StatusOK, clinics)
}

func (h *Handler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("latitude"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Latitude and longitude are required.")
	}
	lon, err := strconv.ParseFloat(c.QueryParam("longitude"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Latitude and longitude are required.")
	}

	radius := 0.0
	if raw := c.QueryParam("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "radius must be a number")
		}
	}

	clinics, err := h.svc.Nearby(c.Request().Context(), lat, lon, radius)
	if err != nil {
		return writeError(err)
	}
	if clinics == nil {
		clinics = []*NearbyClinic{}
	}
	return c.JSON(http.StatusOK, clinics)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}
	clinic, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) Create(c echo.Context) error {
	var req UpsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	clinic, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, clinic)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}
	var req UpsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	clinic, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Clinic deleted."})
}

func writeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Clinic not found.")
	}
	if msg := err.Error(); strings.Contains(msg, "required") || strings.Contains(msg, "must be") {
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
