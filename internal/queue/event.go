// Package queue carries contact form notifications over RabbitMQ and
// turns them into email for the practice inbox.
package queue

import (
	"time"

	"github.com/iliyamo/practice-booking/internal/model"
)

// ContactSubmittedQueue is the default durable queue name.
const ContactSubmittedQueue = "contact.submitted"

// ContactSubmittedEvent is published after a contact form submission is
// stored.  It carries everything the notification email needs so the
// consumer never reads the database.
type ContactSubmittedEvent struct {
	ContactID   string   `json:"contact_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone"`
	Languages   []string `json:"languages"`
	Message     string   `json:"message"`
	SubmittedAt string   `json:"submitted_at"`
}

// NewContactSubmittedEvent builds the event for c.
func NewContactSubmittedEvent(c model.Contact) ContactSubmittedEvent {
	return ContactSubmittedEvent{
		ContactID:   c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Languages:   c.Languages,
		Message:     c.Message,
		SubmittedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
