package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/studyroomhq/study-room-reservation/internal/service"
)

// AdminHandler exposes the management surface: full reservation listings,
// forced cancellation and runtime policy settings.
type AdminHandler struct {
	Reservations *service.ReservationService
	Settings     *service.SettingsCache
}

func NewAdminHandler(res *service.ReservationService, settings *service.SettingsCache) *AdminHandler {
	return &AdminHandler{Reservations: res, Settings: settings}
}

// AllReservations lists every reservation in the system.
func (h *AdminHandler) AllReservations(c echo.Context) error {
	list, err := h.Reservations.All(c.Request().Context())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// CurrentReservations lists active reservations covering the current slot.
func (h *AdminHandler) CurrentReservations(c echo.Context) error {
	list, err := h.Reservations.Current(c.Request().Context())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// CancelReservation force-cancels any RESERVED reservation.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Reservations.CancelByAdmin(c.Request().Context(), id); err != nil {
		return writeDomainErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSettings returns the persisted settings rows.
func (h *AdminHandler) ListSettings(c echo.Context) error {
	rows, err := h.Settings.All(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": rows})
}

// UpdateSettings upserts a map of key/value pairs and refreshes the
// snapshot so the new values take effect immediately.
func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	var req map[string]string
	if err := c.Bind(&req); err != nil || len(req) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	for key, value := range req {
		if strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty key or value"})
		}
		if err := h.Settings.Update(ctx, key, value); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	if err := h.Settings.Refresh(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RefreshSettings reloads the snapshot from the database, picking up
// rows edited outside the API.
func (h *AdminHandler) RefreshSettings(c echo.Context) error {
	if err := h.Settings.Refresh(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
