// Package telemetry emits monitor events (probe completions, alert dispatches)
// to Kafka for the worker to ship to Loki.
package telemetry

import (
	"context"
	"time"
)

// Event types emitted by the monitor.
const (
	EventProbeCompleted = "probe_completed"
	EventAlertSent      = "alert_sent"
)

// Event is one monitor event. Serialized as JSON onto the Kafka topic.
type Event struct {
	EventType      string    `json:"eventType"`
	DeviceID       string    `json:"deviceId,omitempty"`
	OwnerID        string    `json:"ownerId,omitempty"`
	Status         string    `json:"status,omitempty"`
	ResponseTimeMs *int64    `json:"responseTimeMs,omitempty"`
	AlertType      string    `json:"alertType,omitempty"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EventEmitter emits monitor events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
