package repository

import (
	"context"
	"database/sql"

	"ddaas-companion/monitor/internal/pinghistory/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a ping history repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Entry) error {
	rt := sql.NullInt64{}
	if e.ResponseTimeMs != nil {
		rt = sql.NullInt64{Int64: *e.ResponseTimeMs, Valid: true}
	}
	msg := sql.NullString{String: e.ErrorMessage, Valid: e.ErrorMessage != ""}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ping_history (id, device_id, status, response_time_ms, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.DeviceID, string(e.Status), rt, msg, e.CreatedAt)
	return err
}

// ListByDevice returns up to limit entries for the device, newest first.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByDevice(ctx context.Context, deviceID string, limit int32) ([]*domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, device_id, status, response_time_ms, error_message, created_at
		FROM ping_history WHERE device_id = $1
		ORDER BY created_at DESC LIMIT $2`, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Entry
	for rows.Next() {
		var (
			e      domain.Entry
			status string
			rt     sql.NullInt64
			msg    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.DeviceID, &status, &rt, &msg, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = domain.EntryStatus(status)
		if rt.Valid {
			v := rt.Int64
			e.ResponseTimeMs = &v
		}
		if msg.Valid {
			e.ErrorMessage = msg.String
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
