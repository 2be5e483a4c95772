package alert

import (
	"context"
	"time"

	"ddaas-companion/monitor/internal/alert/domain"
	alertrepo "ddaas-companion/monitor/internal/alert/repository"
)

// Throttle decides whether a new alert for a device may be sent under the
// owner's frequency policy. It is an existence check against alert history
// inside the window, not a sliding-window counter.
type Throttle struct {
	history alertrepo.HistoryRepository
}

// NewThrottle returns a Throttle backed by the alert history repository.
func NewThrottle(history alertrepo.HistoryRepository) *Throttle {
	return &Throttle{history: history}
}

// Allow reports whether an alert for (deviceID, ownerID) may be sent at now.
// immediate always allows; hourly/daily allow only when no alert for the pair
// exists inside the window. The check and the subsequent history write are not
// transactional; overlapping schedulers could both pass a stale check.
func (t *Throttle) Allow(ctx context.Context, deviceID, ownerID string, frequency domain.Frequency, now time.Time) (bool, error) {
	window := frequency.Window()
	if window == 0 {
		return true, nil
	}
	exists, err := t.history.ExistsSince(ctx, deviceID, ownerID, now.Add(-window))
	if err != nil {
		return false, err
	}
	return !exists, nil
}
