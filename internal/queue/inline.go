package queue

import (
	"context"

	"github.com/iliyamo/practice-booking/internal/mail"
	"github.com/iliyamo/practice-booking/internal/model"
)

// InlineNotifier mails the practice directly from the request.  It stands
// in for the Publisher/Consumer pair when the broker is disabled.
type InlineNotifier struct {
	sender mail.Sender
	from   string
	to     string
}

// NewInlineNotifier sends mail from -> to through sender.
func NewInlineNotifier(sender mail.Sender, from, to string) *InlineNotifier {
	return &InlineNotifier{sender: sender, from: from, to: to}
}

func (n *InlineNotifier) NotifyContact(ctx context.Context, c model.Contact) error {
	msg, err := RenderContactEmail(NewContactSubmittedEvent(c), n.from, n.to)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}
