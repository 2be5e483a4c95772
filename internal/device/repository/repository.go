package repository

import (
	"context"
	"time"

	"ddaas-companion/monitor/internal/device/domain"
)

// Repository defines the monitor's view of the device registry.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Device, error)
	// ListWithAddress returns every device that has a network address, across
	// all owners, in registration order.
	ListWithAddress(ctx context.Context) ([]*domain.Device, error)
	// UpdateProbeResult writes back the probe outcome: status and last_probe_at
	// are always set; responseTimeMs updates last_response_time_ms only when
	// non-nil (failed probes keep the previous value).
	UpdateProbeResult(ctx context.Context, id string, status domain.Status, probedAt time.Time, responseTimeMs *int64) error
}
