package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/model"
	"github.com/iliyamo/practice-booking/internal/service"
)

// PublicSlotHandler serves the booking page: open slots and reservations.
type PublicSlotHandler struct {
	Slots *service.SlotService
	Cache CachePurger
	Log   zerolog.Logger
}

// NewPublicSlotHandler panics when slots is nil.
func NewPublicSlotHandler(slots *service.SlotService, cache CachePurger, log zerolog.Logger) *PublicSlotHandler {
	if slots == nil {
		panic("nil slot service passed to NewPublicSlotHandler")
	}
	return &PublicSlotHandler{Slots: slots, Cache: cache, Log: log}
}

type dayJSON struct {
	Date  string           `json:"date"`
	Slots []publicSlotJSON `json:"slots"`
}

// Availability handles GET /v1/slots/availability?date=.  dates always
// lists every date with an open slot; days holds the slots of the selected
// date only, or of every date when none is selected.  A date without open
// slots yields an empty list.
func (h *PublicSlotHandler) Availability(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date != "" {
		if err := model.ValidateDate(date); err != nil {
			return respondError(c, h.Log, &service.ValidationError{Fields: map[string]string{"date": err.Error()}})
		}
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	a, err := h.Slots.Availability(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}

	days := make([]dayJSON, 0, len(a.Dates))
	if date != "" {
		days = append(days, dayJSON{Date: date, Slots: toPublicSlots(a.SlotsOn(date))})
	} else {
		for _, d := range a.Days() {
			days = append(days, dayJSON{Date: d.Date, Slots: toPublicSlots(d.Slots)})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "dates": a.Dates, "days": days})
}

type bookingCreatedJSON struct {
	ID        string    `json:"id"`
	SlotID    string    `json:"slotId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Book handles POST /v1/slots/:id/book {name, email, phone}.
func (h *PublicSlotHandler) Book(c echo.Context) error {
	var in service.ReserveInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	b, err := h.Slots.Reserve(ctx, c.Param("id"), in)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	purge(ctx, h.Cache, h.Log)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"booking": bookingCreatedJSON{ID: b.ID, SlotID: b.SlotID, Status: string(b.Status), CreatedAt: b.CreatedAt},
	})
}
