// Package push is a placeholder push notification channel.
package push

import (
	"context"
	"log"
)

// LogSender logs push notifications instead of delivering them. Stands in for
// a real push provider until mobile push is wired up; it always succeeds so
// push-only users still get alert history entries.
type LogSender struct{}

// NewLogSender returns a log-only push channel.
func NewLogSender() *LogSender { return &LogSender{} }

// Name identifies this channel in preferences and alert history.
func (s *LogSender) Name() string { return "push" }

// Send logs the notification and reports success.
func (s *LogSender) Send(_ context.Context, recipient, subject, _ string) error {
	log.Printf("push: would notify %s: %s", recipient, subject)
	return nil
}
