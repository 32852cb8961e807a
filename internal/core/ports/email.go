package ports

import "context"

// Email kinds, used for metrics labels and template selection.
const (
	EmailKindConfirmation  = "confirmation"
	EmailKindPasswordReset = "password_reset"
)

// EmailMessage is a rendered outbound email.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	Kind    string
}

// EmailSender dispatches emails. The queue dispatcher satisfies this
// interface by enqueueing; the SMTP sender by delivering.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
