package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"ddaas-companion/monitor/internal/alert/domain"
)

type PostgresPreferencesRepository struct {
	db *sql.DB
}

// NewPostgresPreferencesRepository returns a preferences repository that uses the given db.
func NewPostgresPreferencesRepository(db *sql.DB) *PostgresPreferencesRepository {
	return &PostgresPreferencesRepository{db: db}
}

// GetByOwner returns the preferences for ownerID, or nil if none stored.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresPreferencesRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Preferences, error) {
	var (
		p    domain.Preferences
		freq string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT owner_id, email_enabled, push_enabled, frequency, created_at, updated_at
		FROM alert_preferences WHERE owner_id = $1`, ownerID).
		Scan(&p.OwnerID, &p.EmailEnabled, &p.PushEnabled, &freq, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Frequency = domain.Frequency(freq)
	return &p, nil
}

// Create persists the preferences row. ON CONFLICT DO NOTHING so a concurrent
// lazy-create of defaults for the same owner is harmless.
func (r *PostgresPreferencesRepository) Create(ctx context.Context, p *domain.Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_preferences (owner_id, email_enabled, push_enabled, frequency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id) DO NOTHING`,
		p.OwnerID, p.EmailEnabled, p.PushEnabled, string(p.Frequency), p.CreatedAt, p.UpdatedAt)
	return err
}

type PostgresHistoryRepository struct {
	db *sql.DB
}

// NewPostgresHistoryRepository returns an alert history repository that uses the given db.
func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

// Create persists the history entry. The entry must have ID set.
func (r *PostgresHistoryRepository) Create(ctx context.Context, e *domain.HistoryEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_history (id, device_id, owner_id, alert_type, notification_methods, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.DeviceID, e.OwnerID, string(e.Type), strings.Join(e.NotificationMethods, ","), e.SentAt)
	return err
}

// ExistsSince reports whether any alert for (deviceID, ownerID) has sent_at >= cutoff.
func (r *PostgresHistoryRepository) ExistsSince(ctx context.Context, deviceID, ownerID string, cutoff time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alert_history
			WHERE device_id = $1 AND owner_id = $2 AND sent_at >= $3
		)`, deviceID, ownerID, cutoff).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
