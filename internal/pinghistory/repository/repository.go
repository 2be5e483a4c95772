package repository

import (
	"context"

	"ddaas-companion/monitor/internal/pinghistory/domain"
)

// Repository defines persistence for ping history entries.
type Repository interface {
	Create(ctx context.Context, e *domain.Entry) error
	// ListByDevice returns the most recent entries for a device, newest first.
	ListByDevice(ctx context.Context, deviceID string, limit int32) ([]*domain.Entry, error)
}
