package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyroomhq/study-room-reservation/internal/model"
	"github.com/studyroomhq/study-room-reservation/internal/service"
)

// ReservationHandler exposes booking, listing and cancellation endpoints.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	RoomID    int64  `json:"room_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	StartSlot int    `json:"start_slot"`
	EndSlot   int    `json:"end_slot"`
	// CheckinRequired defaults to true when omitted.
	CheckinRequired *bool `json:"checkin_required"`
}

// Create books a slot range in a room for the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id required"})
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	checkinRequired := true
	if req.CheckinRequired != nil {
		checkinRequired = *req.CheckinRequired
	}

	res, err := h.Svc.Create(c.Request().Context(), service.CreateReservationInput{
		UserID:          uid,
		RoomID:          req.RoomID,
		Date:            date,
		StartSlot:       req.StartSlot,
		EndSlot:         req.EndSlot,
		CheckinRequired: checkinRequired,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ByDate lists all reservations on a day, for the room timetable view.
func (h *ReservationHandler) ByDate(c echo.Context) error {
	date, err := model.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	list, err := h.Svc.ByDate(c.Request().Context(), date)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// Mine lists the authenticated user's reservations.
func (h *ReservationHandler) Mine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Svc.ByUser(c.Request().Context(), uid)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// Cancel soft-cancels the authenticated user's own reservation.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.Cancel(c.Request().Context(), id, uid); err != nil {
		return writeDomainErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
