// Package notify defines the notification sink contract used by the alert dispatcher.
package notify

import "context"

// Sender delivers one notification over a single channel.
// Implementations must not retry internally; the dispatcher treats any error
// as a failed dispatch for that channel only.
type Sender interface {
	// Name identifies the channel, e.g. "email" or "push".
	Name() string
	Send(ctx context.Context, recipient, subject, body string) error
}
