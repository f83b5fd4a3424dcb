package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/service"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminContactHandler lets the admin read contact form submissions.
type AdminContactHandler struct {
	Contacts *service.ContactService
	Log      zerolog.Logger
}

// NewAdminContactHandler panics when contacts is nil.
func NewAdminContactHandler(contacts *service.ContactService, log zerolog.Logger) *AdminContactHandler {
	if contacts == nil {
		panic("nil contact service passed to NewAdminContactHandler")
	}
	return &AdminContactHandler{Contacts: contacts, Log: log}
}

type contactJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone"`
	Languages []string  `json:"languages"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// List handles GET /v1/admin/contacts?limit=N, newest first.
func (h *AdminContactHandler) List(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return respondError(c, h.Log, &service.ValidationError{Fields: map[string]string{"limit": "must be a non-negative integer"}})
		}
		limit = n
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	contacts, err := h.Contacts.List(ctx, limit)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out := make([]contactJSON, 0, len(contacts))
	for _, ct := range contacts {
		langs := ct.Languages
		if langs == nil {
			langs = []string{}
		}
		out = append(out, contactJSON{
			ID:        ct.ID,
			Name:      ct.Name,
			Email:     ct.Email,
			Phone:     ct.Phone,
			Languages: langs,
			Message:   ct.Message,
			CreatedAt: ct.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "contacts": out})
}

// Export handles GET /v1/admin/contacts/export and returns an xlsx file.
func (h *AdminContactHandler) Export(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var buf bytes.Buffer
	if err := h.Contacts.ExportXLSX(ctx, &buf); err != nil {
		return respondError(c, h.Log, err)
	}
	name := "contacts-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
