package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/service"
)

// ContactHandler accepts the public contact form.
type ContactHandler struct {
	Contacts *service.ContactService
	Log      zerolog.Logger
}

// NewContactHandler panics when contacts is nil.
func NewContactHandler(contacts *service.ContactService, log zerolog.Logger) *ContactHandler {
	if contacts == nil {
		panic("nil contact service passed to NewContactHandler")
	}
	return &ContactHandler{Contacts: contacts, Log: log}
}

// Submit handles POST /v1/contact.
func (h *ContactHandler) Submit(c echo.Context) error {
	var in service.ContactInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	ct, err := h.Contacts.Submit(ctx, in)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": ct.ID})
}
