// Package handler contains the Echo HTTP handlers for the portal API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/booking"
	"github.com/mahmoud7895/loisirtt-portal/internal/repository"
)

// currentUserID pulls the authenticated user's ID out of the context. JWT
// number claims decode as float64, so both representations are accepted.
func currentUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func claimString(c echo.Context, key string) string {
	s, _ := c.Get(key).(string)
	return s
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeBookingError maps the stable error kinds of the booking layer onto
// HTTP responses: validation 400, missing rows 404, duplicates and archived
// types 409, sold-out 409 with the remaining count.
func writeBookingError(c echo.Context, err error) error {
	var short *repository.InsufficientInventoryError
	switch {
	case errors.Is(err, booking.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.As(err, &short):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "not enough tickets",
			"remaining": short.Remaining,
		})
	case errors.Is(err, repository.ErrDuplicateRegistration):
		return c.JSON(http.StatusConflict, echo.Map{"error": "beneficiary already registered"})
	case errors.Is(err, booking.ErrTypeArchived):
		return c.JSON(http.StatusConflict, echo.Map{"error": "activity is archived"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
