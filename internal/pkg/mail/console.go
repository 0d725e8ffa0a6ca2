package mail

import (
	"context"
	"log/slog"
)

// Console is a Mail implementation that logs messages instead of sending
// them. It is the default backend for local development.
type Console struct{}

// NewConsole constructs a console mail sender.
func NewConsole() *Console {
	return &Console{}
}

// Send logs the message and reports success.
func (c *Console) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "console mail",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)

	return nil
}

// Close implements io.Closer for interface compatibility.
func (c *Console) Close() error {
	return nil
}
