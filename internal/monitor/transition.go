package monitor

import "ddaas-companion/monitor/internal/device/domain"

// Decision is the outcome of comparing a fresh probe classification against a
// device's previous status.
type Decision struct {
	NewStatus domain.Status
	// ShouldConsiderAlert is true for transitions into offline and for
	// recoveries from offline back to online. A transition among non-offline
	// states (e.g. unknown to online on a first successful probe) is not
	// alert-worthy, so first-ever probes stay quiet.
	ShouldConsiderAlert bool
}

// DecideTransition maps a probe result onto the device's next status and says
// whether the change warrants an alert evaluation.
func DecideTransition(previous domain.Status, success bool) Decision {
	newStatus := domain.StatusOffline
	if success {
		newStatus = domain.StatusOnline
	}
	return Decision{
		NewStatus: newStatus,
		ShouldConsiderAlert: previous != newStatus &&
			(newStatus == domain.StatusOffline || previous == domain.StatusOffline),
	}
}
