package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ddaas-companion/monitor/internal/device/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a device repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the device for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, address, status, last_probe_at, last_response_time_ms, created_at
		FROM devices WHERE id = $1`, id)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// ListWithAddress returns all devices with a non-null address in registration order.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListWithAddress(ctx context.Context) ([]*domain.Device, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, address, status, last_probe_at, last_response_time_ms, created_at
		FROM devices WHERE address IS NOT NULL AND address <> ''
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateProbeResult writes back status and last_probe_at; last_response_time_ms
// is only replaced when responseTimeMs is non-nil, so failed probes keep the
// latency of the last successful one.
func (r *PostgresRepository) UpdateProbeResult(ctx context.Context, id string, status domain.Status, probedAt time.Time, responseTimeMs *int64) error {
	rt := sql.NullInt64{}
	if responseTimeMs != nil {
		rt = sql.NullInt64{Int64: *responseTimeMs, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE devices
		SET status = $2, last_probe_at = $3,
		    last_response_time_ms = COALESCE($4, last_response_time_ms)
		WHERE id = $1`, id, string(status), probedAt, rt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*domain.Device, error) {
	var (
		d       domain.Device
		status  string
		address sql.NullString
		probeAt sql.NullTime
		respMs  sql.NullInt64
	)
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &address, &status, &probeAt, &respMs, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Status = domain.Status(status)
	if address.Valid {
		d.Address = address.String
	}
	if probeAt.Valid {
		t := probeAt.Time
		d.LastProbeAt = &t
	}
	if respMs.Valid {
		v := respMs.Int64
		d.LastResponseTimeMs = &v
	}
	return &d, nil
}
