package repository

import (
	"context"
	"time"

	"ddaas-companion/monitor/internal/alert/domain"
)

// PreferencesRepository defines persistence for per-user alert preferences.
type PreferencesRepository interface {
	// GetByOwner returns the preferences for the owner, or nil if none stored.
	GetByOwner(ctx context.Context, ownerID string) (*domain.Preferences, error)
	Create(ctx context.Context, p *domain.Preferences) error
}

// HistoryRepository defines persistence for alert history entries.
type HistoryRepository interface {
	Create(ctx context.Context, e *domain.HistoryEntry) error
	// ExistsSince reports whether any alert for (deviceID, ownerID) was sent at
	// or after the cutoff. The throttle only needs existence, not volume.
	ExistsSince(ctx context.Context, deviceID, ownerID string, cutoff time.Time) (bool, error)
}
