package domain

import "time"

// Type says which transition an alert reports.
type Type string

const (
	TypeOnline  Type = "online"
	TypeOffline Type = "offline"
)

// HistoryEntry is one append-only alert record. Written only when at least one
// notification method actually attempted dispatch; never updated or deleted.
type HistoryEntry struct {
	ID       string
	DeviceID string
	OwnerID  string
	Type     Type
	// NotificationMethods lists the channels that dispatched, e.g. ["email", "push"].
	NotificationMethods []string
	SentAt              time.Time
}
