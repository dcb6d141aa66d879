package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyroomhq/study-room-reservation/internal/model"
	"github.com/studyroomhq/study-room-reservation/internal/service"
)

// SettingsHandler serves the public policy view so clients can render
// the booking form without hardcoding the rules.
type SettingsHandler struct {
	Cache *service.SettingsCache
}

func NewSettingsHandler(cache *service.SettingsCache) *SettingsHandler {
	return &SettingsHandler{Cache: cache}
}

// Public returns the effective policy parameters from the snapshot.
func (h *SettingsHandler) Public(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"opening_hour":              h.Cache.IntValue(model.SettingOpeningHour, 9),
		"closing_hour":              h.Cache.IntValue(model.SettingClosingHour, 21),
		"daily_limit_hours":         h.Cache.IntValue(model.SettingDailyLimitHours, 3),
		"max_slots_per_reservation": h.Cache.IntValue(model.SettingMaxSlotsPerReservation, 6),
		"checkin_grace_minutes":     h.Cache.IntValue(model.SettingCheckinGraceMinutes, 15),
	})
}
