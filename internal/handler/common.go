// Package handler contains the Echo HTTP handlers.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/studyroomhq/study-room-reservation/internal/service"
)

// getUserID extracts the authenticated user's ID from the context. The
// JWT middleware stores the raw "sub" claim, which arrives as a JSON
// number (float64) or occasionally a numeric string.
func getUserID(c echo.Context) (int64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// writeDomainErr maps service and repository errors onto HTTP responses.
// Rule violations surface their reason verbatim with 409 Conflict so
// clients can show the message; everything else gets a generic body.
func writeDomainErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrRule):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case service.IsNotFound(err):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case service.IsForbidden(err):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses the ":id" route parameter.
func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
