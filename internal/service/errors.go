// Package service holds the slot and contact use cases between the HTTP
// handlers and the repositories.
package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/iliyamo/practice-booking/internal/repository"
)

var (
	// ErrSlotNotFound is returned when the slot does not exist (or, for
	// Reserve, is inactive).
	ErrSlotNotFound = repository.ErrSlotNotFound
	// ErrSlotBooked is returned when deleting a slot that has a booking.
	ErrSlotBooked = errors.New("slot is booked")
	// ErrSlotUnavailable is returned when reserving a slot someone else
	// already booked.
	ErrSlotUnavailable = errors.New("slot already booked")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
