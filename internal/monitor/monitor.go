// Package monitor probes registered devices, tracks status transitions, and
// triggers throttled alerts on alert-worthy changes.
package monitor

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"ddaas-companion/monitor/internal/alert"
	alertdomain "ddaas-companion/monitor/internal/alert/domain"
	devicedomain "ddaas-companion/monitor/internal/device/domain"
	devicerepo "ddaas-companion/monitor/internal/device/repository"
	"ddaas-companion/monitor/internal/pinghistory"
	historydomain "ddaas-companion/monitor/internal/pinghistory/domain"
	"ddaas-companion/monitor/internal/telemetry"
)

// Targeted-run precondition failures, surfaced to the HTTP caller as 4xx.
var (
	ErrDeviceNotFound = errors.New("monitor: device not found")
	ErrNoAddress      = errors.New("monitor: device has no address")
)

// AlertSender evaluates and dispatches one alert. Implemented by alert.Dispatcher.
type AlertSender interface {
	Send(ctx context.Context, req alert.Request) (*alert.Result, error)
}

// OwnerDirectory resolves a device owner to an email recipient.
type OwnerDirectory interface {
	EmailByID(ctx context.Context, ownerID string) (string, error)
}

// DeviceResult is the per-device line of a run report.
type DeviceResult struct {
	DeviceID       string
	DeviceName     string
	Address        string
	PreviousStatus devicedomain.Status
	NewStatus      devicedomain.Status
	Outcome        Outcome
}

// Report aggregates one monitor run.
type Report struct {
	DevicesChecked int
	Results        []DeviceResult
}

// Monitor coordinates probe runs over the registered devices. Each device's
// cycle (probe, record, decide, persist, alert) is independent; probe and
// persistence failures for one device never abort the others.
type Monitor struct {
	devices     devicerepo.Repository
	recorder    *pinghistory.Recorder
	owners      OwnerDirectory
	alerts      AlertSender
	prober      Prober
	emitter     telemetry.EventEmitter
	metrics     *runMetrics
	concurrency int
	now         func() time.Time
}

// Options tunes optional Monitor behavior.
type Options struct {
	// Concurrency caps how many devices a sweep probes at once; <=1 means
	// sequential, which matches the reference behavior.
	Concurrency int
	// Emitter receives probe/alert events; nil disables emission.
	Emitter telemetry.EventEmitter
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// New wires a Monitor. owners and alerts may be nil; then transitions are
// tracked but no notifications go out.
func New(devices devicerepo.Repository, recorder *pinghistory.Recorder, owners OwnerDirectory, alerts AlertSender, prober Prober, opts Options) *Monitor {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		devices:     devices,
		recorder:    recorder,
		owners:      owners,
		alerts:      alerts,
		prober:      prober,
		emitter:     opts.Emitter,
		metrics:     newRunMetrics(),
		concurrency: concurrency,
		now:         now,
	}
}

// RunDevice probes exactly one device. The device must exist and have an
// address; otherwise ErrDeviceNotFound or ErrNoAddress is returned without
// probing.
func (m *Monitor) RunDevice(ctx context.Context, deviceID string) (*Report, error) {
	d, err := m.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDeviceNotFound
	}
	if d.Address == "" {
		return nil, ErrNoAddress
	}
	result := m.checkDevice(ctx, d)
	return &Report{DevicesChecked: 1, Results: []DeviceResult{result}}, nil
}

// RunAll sweeps every device with an address, across all owners, in
// registration order. Devices are probed with bounded parallelism; results
// keep the load order regardless of completion order.
func (m *Monitor) RunAll(ctx context.Context) (*Report, error) {
	devices, err := m.devices.ListWithAddress(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]DeviceResult, len(devices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, d := range devices {
		g.Go(func() error {
			results[i] = m.checkDevice(gctx, d)
			return nil
		})
	}
	_ = g.Wait() // checkDevice never returns an error

	return &Report{DevicesChecked: len(results), Results: results}, nil
}

// checkDevice runs one device's full cycle: probe, record history, decide the
// transition, persist status, and evaluate an alert when the transition
// warrants one.
func (m *Monitor) checkDevice(ctx context.Context, d *devicedomain.Device) DeviceResult {
	start := m.now()
	outcome := m.prober.Probe(ctx, d.Address)

	entryStatus, errMsg := classifyHistory(outcome)
	var responseTime *int64
	if outcome.Success {
		v := outcome.ResponseTimeMs
		responseTime = &v
	}
	m.recorder.Record(ctx, d.ID, entryStatus, responseTime, errMsg)

	decision := DecideTransition(d.Status, outcome.Success)
	probedAt := m.now().UTC()
	if err := m.devices.UpdateProbeResult(ctx, d.ID, decision.NewStatus, probedAt, responseTime); err != nil {
		log.Printf("monitor: failed to update device %s: %v", d.ID, err)
	}

	m.metrics.recordProbe(ctx, string(entryStatus), m.now().Sub(start))
	telemetry.EmitAsync(m.emitter, ctx, &telemetry.Event{
		EventType:      telemetry.EventProbeCompleted,
		DeviceID:       d.ID,
		OwnerID:        d.OwnerID,
		Status:         string(decision.NewStatus),
		ResponseTimeMs: responseTime,
		Source:         "monitor",
		CreatedAt:      probedAt,
	})

	if decision.ShouldConsiderAlert && m.alerts != nil {
		m.sendAlert(ctx, d, decision.NewStatus, probedAt)
	}

	return DeviceResult{
		DeviceID:       d.ID,
		DeviceName:     d.Name,
		Address:        d.Address,
		PreviousStatus: d.Status,
		NewStatus:      decision.NewStatus,
		Outcome:        outcome,
	}
}

func (m *Monitor) sendAlert(ctx context.Context, d *devicedomain.Device, newStatus devicedomain.Status, at time.Time) {
	email := ""
	if m.owners != nil {
		var err error
		email, err = m.owners.EmailByID(ctx, d.OwnerID)
		if err != nil {
			log.Printf("monitor: failed to resolve email for owner %s: %v", d.OwnerID, err)
		}
	}

	alertType := alertdomain.TypeOnline
	if newStatus == devicedomain.StatusOffline {
		alertType = alertdomain.TypeOffline
	}
	res, err := m.alerts.Send(ctx, alert.Request{
		DeviceID:   d.ID,
		DeviceName: d.DisplayName(),
		OwnerID:    d.OwnerID,
		Type:       alertType,
		Email:      email,
	})
	if err != nil {
		log.Printf("monitor: alert dispatch failed for device %s: %v", d.ID, err)
		return
	}
	if res.Suppressed || len(res.NotificationMethods) == 0 {
		return
	}
	m.metrics.recordAlert(ctx, string(alertType))
	telemetry.EmitAsync(m.emitter, ctx, &telemetry.Event{
		EventType: telemetry.EventAlertSent,
		DeviceID:  d.ID,
		OwnerID:   d.OwnerID,
		AlertType: string(alertType),
		Source:    "monitor",
		CreatedAt: at,
	})
}

// classifyHistory maps a probe outcome onto the history entry status. An
// unreachable device is logged as an error entry with its message, matching
// the success|timeout|error history taxonomy.
func classifyHistory(o Outcome) (historydomain.EntryStatus, string) {
	if o.Success {
		return historydomain.EntrySuccess, ""
	}
	if o.Reason == ReasonTimeout {
		return historydomain.EntryTimeout, o.ErrorMessage
	}
	return historydomain.EntryError, o.ErrorMessage
}
