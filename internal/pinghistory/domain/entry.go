package domain

import "time"

// EntryStatus classifies a single probe attempt in the history log.
type EntryStatus string

const (
	EntrySuccess EntryStatus = "success"
	EntryTimeout EntryStatus = "timeout"
	EntryError   EntryStatus = "error"
)

// Entry is one append-only ping history record. Exactly one entry is written
// per probe attempt, regardless of outcome. Entries are never updated or deleted.
type Entry struct {
	ID             string
	DeviceID       string
	Status         EntryStatus
	ResponseTimeMs *int64 // set only for successful probes
	ErrorMessage   string // empty for successful probes
	CreatedAt      time.Time
}
