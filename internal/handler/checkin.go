package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/studyroomhq/study-room-reservation/internal/service"
)

// CheckinHandler exposes the kiosk check-in endpoint and the manual
// per-reservation variant used by staff.
type CheckinHandler struct {
	Svc *service.CheckinService
}

func NewCheckinHandler(svc *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{Svc: svc}
}

// CheckIn resolves and checks in the caller's reservation for a room
// today. The room is identified by the room_id query parameter, matching
// the kiosk QR payload.
func (h *CheckinHandler) CheckIn(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := strconv.ParseInt(c.QueryParam("room_id"), 10, 64)
	if err != nil || roomID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id required"})
	}

	res, outcome, err := h.Svc.CheckIn(c.Request().Context(), uid, roomID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"outcome": outcome, "reservation": res})
}

type manualCheckinReq struct {
	ReservationID int64 `json:"reservation_id"`
}

// Manual checks in one specific reservation by ID. Registered behind the
// ADMIN role for front-desk overrides when the kiosk is down.
func (h *CheckinHandler) Manual(c echo.Context) error {
	var req manualCheckinReq
	if err := c.Bind(&req); err != nil || req.ReservationID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id required"})
	}

	res, outcome, err := h.Svc.CheckInByID(c.Request().Context(), req.ReservationID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"outcome": outcome, "reservation": res})
}
