package domain

import "time"

// Frequency controls how often repeat alerts may be sent for the same device.
type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
)

// Window returns the throttle window for the frequency; zero for immediate.
func (f Frequency) Window() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencyDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Preferences holds a user's alert settings. Created lazily with defaults on
// the first alert evaluation for a user that has none.
type Preferences struct {
	OwnerID      string
	EmailEnabled bool
	PushEnabled  bool
	Frequency    Frequency
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultPreferences returns the defaults for a user with no stored preferences:
// both channels enabled, immediate frequency.
func DefaultPreferences(ownerID string) *Preferences {
	now := time.Now().UTC()
	return &Preferences{
		OwnerID:      ownerID,
		EmailEnabled: true,
		PushEnabled:  true,
		Frequency:    FrequencyImmediate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
