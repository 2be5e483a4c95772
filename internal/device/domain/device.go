package domain

import "time"

// Status is a device's last known reachability classification.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// Device represents a registered device for a user. The registry (CRUD, ownership)
// lives outside the monitor; the monitor reads devices and writes back probe results.
type Device struct {
	ID      string
	OwnerID string
	Name    string
	// Address is the device's network address. Empty means the device has no
	// address on record and is never probed.
	Address            string
	Status             Status
	LastProbeAt        *time.Time
	LastResponseTimeMs *int64
	CreatedAt          time.Time
}

// DisplayName returns the device name, or a placeholder when unnamed.
func (d *Device) DisplayName() string {
	if d.Name == "" {
		return "Unknown Device"
	}
	return d.Name
}
