package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/config"
	"github.com/iliyamo/practice-booking/internal/service"
)

// AdminSlotHandler serves the slot management endpoints of the admin panel.
type AdminSlotHandler struct {
	Slots    *service.SlotService
	Schedule config.ScheduleTemplate
	Location *time.Location
	Cache    CachePurger
	Log      zerolog.Logger
}

// NewAdminSlotHandler panics when slots is nil.
func NewAdminSlotHandler(slots *service.SlotService, schedule config.ScheduleTemplate, loc *time.Location, cache CachePurger, log zerolog.Logger) *AdminSlotHandler {
	if slots == nil {
		panic("nil slot service passed to NewAdminSlotHandler")
	}
	if loc == nil {
		loc = time.Local
	}
	return &AdminSlotHandler{Slots: slots, Schedule: schedule, Location: loc, Cache: cache, Log: log}
}

// List handles GET /v1/admin/slots?date=YYYY-MM-DD.
func (h *AdminSlotHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	slots, err := h.Slots.List(ctx, c.QueryParam("date"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "slots": toSlotsJSON(slots)})
}

type createSlotsReq struct {
	Date  string          `json:"date"`
	Times json.RawMessage `json:"times"`
}

// Create handles POST /v1/admin/slots {date, times[]}.  Pairs that already
// exist are skipped, so posting the same body twice is harmless.
func (h *AdminSlotHandler) Create(c echo.Context) error {
	var req createSlotsReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	raw := bytes.TrimSpace(req.Times)
	if req.Date == "" || len(raw) == 0 || raw[0] != '[' {
		return fail(c, http.StatusBadRequest, "Date and times array are required")
	}
	var times []string
	if err := json.Unmarshal(raw, &times); err != nil {
		return respondError(c, h.Log, &service.ValidationError{Fields: map[string]string{"times": "must be an array of strings"}})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.Slots.Create(ctx, service.CreateSlotsInput{Date: req.Date, Times: times})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	status := http.StatusOK
	if res.Count() > 0 {
		status = http.StatusCreated
		purge(ctx, h.Cache, h.Log)
	}
	return c.JSON(status, echo.Map{
		"success": true,
		"message": res.Message(),
		"slots":   toSlotsJSON(res.Slots),
	})
}

// Delete handles DELETE /v1/admin/slots/:id.
func (h *AdminSlotHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Slots.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, h.Log, err)
	}
	purge(ctx, h.Cache, h.Log)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Slot deleted successfully"})
}

// Cleanup handles DELETE /v1/admin/slots and removes past unbooked slots.
func (h *AdminSlotHandler) Cleanup(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.Slots.Cleanup(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if n > 0 {
		purge(ctx, h.Cache, h.Log)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Deleted " + strconv.FormatInt(n, 10) + " past slots",
		"deletedCount": n,
	})
}

type setActiveReq struct {
	IsActive *bool `json:"isActive"`
}

// SetActive handles PATCH /v1/admin/slots/:id {isActive}.
func (h *AdminSlotHandler) SetActive(c echo.Context) error {
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if req.IsActive == nil {
		return respondError(c, h.Log, &service.ValidationError{Fields: map[string]string{"isActive": "is required"}})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	slot, err := h.Slots.SetActive(ctx, c.Param("id"), *req.IsActive)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	purge(ctx, h.Cache, h.Log)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "slot": toSlotJSON(*slot)})
}

// Templates handles GET /v1/admin/slots/templates: the dates and time
// windows offered by the slot creation form.
func (h *AdminSlotHandler) Templates(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"dates":   h.Schedule.Dates(time.Now(), h.Location),
		"times":   h.Schedule.Times,
	})
}
