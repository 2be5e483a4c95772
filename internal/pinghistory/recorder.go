// Package pinghistory records one outcome entry per probe attempt.
package pinghistory

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"ddaas-companion/monitor/internal/pinghistory/domain"
	historyrepo "ddaas-companion/monitor/internal/pinghistory/repository"
)

// Recorder appends ping history entries. Record is best-effort: write failures
// are logged and do not affect the caller, so a history outage never aborts a
// monitor run.
type Recorder struct {
	repo historyrepo.Repository
	now  func() time.Time
}

// NewRecorder returns a Recorder that persists to repo.
func NewRecorder(repo historyrepo.Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// Record writes one history entry for a probe attempt. Best-effort: errors are
// logged and not returned.
func (r *Recorder) Record(ctx context.Context, deviceID string, status domain.EntryStatus, responseTimeMs *int64, errorMessage string) {
	if r.repo == nil {
		return
	}
	entry := &domain.Entry{
		ID:             uuid.New().String(),
		DeviceID:       deviceID,
		Status:         status,
		ResponseTimeMs: responseTimeMs,
		ErrorMessage:   errorMessage,
		CreatedAt:      r.now().UTC(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		log.Printf("pinghistory: failed to record %s for device %s: %v", status, deviceID, err)
	}
}
