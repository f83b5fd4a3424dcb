// Package handler holds the echo HTTP handlers.  Handlers bind and shape
// requests; the rules live in package service.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/model"
	"github.com/iliyamo/practice-booking/internal/service"
)

// store calls are bounded by this timeout
const dbTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// CachePurger drops cached availability responses after a slot changes.
// *middleware.CachePurger implements it.
type CachePurger interface {
	Purge(ctx context.Context) (int, error)
}

func purge(ctx context.Context, p CachePurger, log zerolog.Logger) {
	if p == nil {
		return
	}
	if _, err := p.Purge(context.WithoutCancel(ctx)); err != nil {
		log.Warn().Err(err).Msg("availability cache purge failed")
	}
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

func badBody(c echo.Context) error {
	return fail(c, http.StatusBadRequest, "Invalid request body")
}

// respondError maps service errors onto HTTP responses.  Unexpected errors
// are logged and reported as 500 without detail.
func respondError(c echo.Context, log zerolog.Logger, err error) error {
	if ve, ok := service.IsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   "validation failed",
			"fields":  ve.Fields,
		})
	}
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		return fail(c, http.StatusNotFound, "Slot not found")
	case errors.Is(err, service.ErrSlotBooked):
		return fail(c, http.StatusBadRequest, "Cannot delete booked slot")
	case errors.Is(err, service.ErrSlotUnavailable):
		return fail(c, http.StatusConflict, "Slot is already booked")
	case errors.Is(err, context.DeadlineExceeded):
		log.Error().Err(err).Str("path", c.Path()).Msg("request timed out")
		return fail(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// slotJSON is the admin representation of a slot.
type slotJSON struct {
	ID        string       `json:"id"`
	Date      string       `json:"date"`
	Time      string       `json:"time"`
	IsBooked  bool         `json:"isBooked"`
	BookedBy  *string      `json:"bookedBy"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	Booking   *bookingJSON `json:"booking,omitempty"`
}

type bookingJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSlotJSON(s model.Slot) slotJSON {
	out := slotJSON{
		ID:        s.ID,
		Date:      s.Date,
		Time:      s.Time,
		IsBooked:  s.IsBooked,
		BookedBy:  s.BookedBy,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
	if b := s.Booking; b != nil {
		out.Booking = &bookingJSON{
			ID:        b.ID,
			Name:      b.Name,
			Email:     b.Email,
			Phone:     b.Phone,
			Status:    string(b.Status),
			CreatedAt: b.CreatedAt,
		}
	}
	return out
}

func toSlotsJSON(slots []model.Slot) []slotJSON {
	out := make([]slotJSON, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotJSON(s))
	}
	return out
}

// publicSlotJSON hides booking state from visitors.
type publicSlotJSON struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Time string `json:"time"`
}

func toPublicSlots(slots []model.Slot) []publicSlotJSON {
	out := make([]publicSlotJSON, 0, len(slots))
	for _, s := range slots {
		out = append(out, publicSlotJSON{ID: s.ID, Date: s.Date, Time: s.Time})
	}
	return out
}
