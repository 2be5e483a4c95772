package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"ddaas-companion/monitor/internal/alert"
	devicedomain "ddaas-companion/monitor/internal/device/domain"
	"ddaas-companion/monitor/internal/pinghistory"
	historydomain "ddaas-companion/monitor/internal/pinghistory/domain"
)

type fakeDeviceRepo struct {
	devices   []*devicedomain.Device
	updateErr error
	updates   int
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, id string) (*devicedomain.Device, error) {
	for _, d := range r.devices {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDeviceRepo) ListWithAddress(_ context.Context) ([]*devicedomain.Device, error) {
	var out []*devicedomain.Device
	for _, d := range r.devices {
		if d.Address != "" {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) UpdateProbeResult(_ context.Context, id string, status devicedomain.Status, probedAt time.Time, responseTimeMs *int64) error {
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	for _, d := range r.devices {
		if d.ID == id {
			d.Status = status
			d.LastProbeAt = &probedAt
			if responseTimeMs != nil {
				d.LastResponseTimeMs = responseTimeMs
			}
		}
	}
	return nil
}

type fakeHistoryRepo struct {
	entries []*historydomain.Entry
	err     error
}

func (r *fakeHistoryRepo) Create(_ context.Context, e *historydomain.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeHistoryRepo) ListByDevice(context.Context, string, int32) ([]*historydomain.Entry, error) {
	return nil, nil
}

type fakeProber struct {
	outcomes map[string]Outcome
	probed   []string
}

func (p *fakeProber) Probe(_ context.Context, address string) Outcome {
	p.probed = append(p.probed, address)
	if out, ok := p.outcomes[address]; ok {
		return out
	}
	return Outcome{Reason: ReasonUnreachable, ErrorMessage: "Device unreachable"}
}

type fakeAlertSender struct {
	requests []alert.Request
	result   *alert.Result
	err      error
}

func (s *fakeAlertSender) Send(_ context.Context, req alert.Request) (*alert.Result, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &alert.Result{NotificationMethods: []string{"email"}}, nil
}

type fakeOwners map[string]string

func (o fakeOwners) EmailByID(_ context.Context, ownerID string) (string, error) {
	return o[ownerID], nil
}

func newTestMonitor(devices *fakeDeviceRepo, history *fakeHistoryRepo, prober *fakeProber, alerts *fakeAlertSender) *Monitor {
	return New(devices, pinghistory.NewRecorder(history), fakeOwners{"u1": "u1@example.com"}, alerts, prober, Options{})
}

func device(id, address string, status devicedomain.Status) *devicedomain.Device {
	return &devicedomain.Device{ID: id, OwnerID: "u1", Name: "Device " + id, Address: address, Status: status}
}

func TestRunDevice_UnknownFailingProbe(t *testing.T) {
	// First-ever probe fails: history gets an error entry, status flips to
	// offline, and the unknown->offline transition is alert-worthy.
	devices := &fakeDeviceRepo{devices: []*devicedomain.Device{device("d1", "10.0.0.5", devicedomain.StatusUnknown)}}
	history := &fakeHistoryRepo{}
	prober := &fakeProber{}
	alerts := &fakeAlertSender{}
	m := newTestMonitor(devices, history, prober, alerts)

	report, err := m.RunDevice(context.Background(), "d1")
	if err != nil {
		t.Fatalf("RunDevice: %v", err)
	}
	if report.DevicesChecked != 1 {
		t.Errorf("DevicesChecked = %d, want 1", report.DevicesChecked)
	}
	if len(history.entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history.entries))
	}
	if history.entries[0].Status != historydomain.EntryError {
		t.Errorf("history status = %q, want %q", history.entries[0].Status, historydomain.EntryError)
	}
	if got := devices.devices[0].Status; got != devicedomain.StatusOffline {
		t.Errorf("device status = %q, want %q", got, devicedomain.StatusOffline)
	}
	if len(alerts.requests) != 1 {
		t.Fatalf("alert requests = %d, want 1 (unknown->offline is alert-worthy)", len(alerts.requests))
	}
	if alerts.requests[0].Type != "offline" {
		t.Errorf("alert type = %q, want offline", alerts.requests[0].Type)
	}
}

func TestRunDevice_UnknownToOnlineIsQuiet(t *testing.T) {
	devices := &fakeDeviceRepo{devices: []*devicedomain.Device{device("d1", "10.0.0.5", devicedomain.StatusUnknown)}}
	history := &fakeHistoryRepo{}
	prober := &fakeProber{outcomes: map[string]Outcome{"10.0.0.5": {Success: true, ResponseTimeMs: 12}}}
	alerts := &fakeAlertSender{}
	m := newTestMonitor(devices, history, prober, alerts)

	if _, err := m.RunDevice(context.Background(), "d1"); err != nil {
		t.Fatalf("RunDevice: %v", err)
	}
	if got := devices.devices[0].Status; got != devicedomain.StatusOnline {
		t.Errorf("device status = %q, want %q", got, devicedomain.StatusOnline)
	}
	if len(alerts.requests) != 0 {
		t.Errorf("alert requests = %d, want 0 (first successful probe stays quiet)", len(alerts.requests))
	}
}

func TestRunDevice_OfflineRecovery(t *testing.T) {
	devices := &fakeDeviceRepo{devices: []*devicedomain.Device{device("d1", "10.0.0.5", devicedomain.StatusOffline)}}
	history := &fakeHistoryRepo{}
	prober := &fakeProber{outcomes: map[string]Outcome{"10.0.0.5": {Success: true, ResponseTimeMs: 42}}}
	alerts := &fakeAlertSender{}
	m := newTestMonitor(devices, history, prober, alerts)

	report, err := m.RunDevice(context.Background(), "d1")
	if err != nil {
		t.Fatalf("RunDevice: %v", err)
	}
	entry := history.entries[0]
	if entry.Status != historydomain.EntrySuccess {
		t.Errorf("history status = %q, want success", entry.Status)
	}
	if entry.ResponseTimeMs == nil || *entry.ResponseTimeMs != 42 {
		t.Errorf("history response time = %v, want 42", entry.ResponseTimeMs)
	}
	if got := devices.devices[0].Status; got != devicedomain.StatusOnline {
		t.Errorf("device status = %q, want online", got)
	}
	if devices.devices[0].LastResponseTimeMs == nil || *devices.devices[0].LastResponseTimeMs != 42 {
		t.Errorf("device response time = %v, want 42", devices.devices[0].LastResponseTimeMs)
	}
	if len(alerts.requests) != 1 {
		t.Fatalf("alert requests = %d, want 1", len(alerts.requests))
	}
	req := alerts.requests[0]
	if req.Type != "online" {
		t.Errorf("alert type = %q, want online", req.Type)
	}
	if req.Email != "u1@example.com" {
		t.Errorf("alert email = %q, want u1@example.com", req.Email)
	}
	if report.Results[0].PreviousStatus != devicedomain.StatusOffline {
		t.Errorf("PreviousStatus = %q, want offline", report.Results[0].PreviousStatus)
	}
}

func TestRunDevice_Preconditions(t *testing.T) {
	devices := &fakeDeviceRepo{devices: []*devicedomain.Device{device("d1", "", devicedomain.StatusUnknown)}}
	history := &fakeHistoryRepo{}
	prober := &fakeProber{}
	m := newTestMonitor(devices, history, prober, &fakeAlertSender{})

	if _, err := m.RunDevice(context.Background(), "missing"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("RunDevice(missing) error = %v, want ErrDeviceNotFound", err)
	}
	if _, err := m.RunDevice(context.Background(), "d1"); !errors.Is(err, ErrNoAddress) {
		t.Errorf("RunDevice(no address) error = %v, want ErrNoAddress", err)
	}
	if len(prober.probed) != 0 {
		t.Errorf("prober invoked %d times, want 0", len(prober.probed))
	}
	if len(history.entries) != 0 {
		t.Errorf("history entries = %d, want 0", len(history.entries))
	}
}

func TestRunAll_SkipsDevicesWithoutAddress(t *testing.T) {
	devices := &fakeDeviceRepo{devices: []*devicedomain.Device{
		device("d1", "10.0.0.1", devicedomain.StatusUnknown),
		device("d2", "", devicedomain.StatusUnknown),
		device("d3", "10.0.0.3", devicedomain.StatusUnknown),
	}}
	history := &fakeHistoryRepo{}
	prober := &fakeProber{}
	m := newTestMonitor(devices, history, prober, &fakeAlertSender{})

	report, err := m.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.DevicesChecked != 2 {
		t.Errorf("DevicesChecked = %d, want 2", report.DevicesChecked)
	}
	if len(prober.probed) != 2 {
		t.Errorf("prober invoked %d times, want 2", len(prober.probed))
	}
	for _, addr := range prober.probed {
		if addr == "" {
			t.Error("prober invoked with empty address")
		}
	}
	// Results keep registration order.
	if report.Results[0].DeviceID != "d1" || report.Results[1].DeviceID != "d3" {
		t.Errorf("result order = [%s %s], want [d1 d3]", report.Results[0].DeviceID, report.Results[1].DeviceID)
	}
}

func TestRunAll_SecondSweepIsQuiet(t *testing.T) {
	// No connectivity change between sweeps: two history entries per device
	// but only the first sweep's transition triggers an alert.
	devices := &fakeDeviceRepo{devices: []*devicedomain.Device{device("d1", "10.0.0.5", devicedomain.StatusOnline)}}
	history := &fakeHistoryRepo{}
	prober := &fakeProber{}
	alerts := &fakeAlertSender{}
	m := newTestMonitor(devices, history, prober, alerts)

	for i := 0; i < 2; i++ {
		if _, err := m.RunAll(context.Background()); err != nil {
			t.Fatalf("RunAll #%d: %v", i+1, err)
		}
	}
	if len(history.entries) != 2 {
		t.Errorf("history entries = %d, want 2", len(history.entries))
	}
	if len(alerts.requests) != 1 {
		t.Errorf("alert requests = %d, want 1 (only the online->offline transition)", len(alerts.requests))
	}
}

func TestCheckDevice_PersistenceFailureIsNotFatal(t *testing.T) {
	devices := &fakeDeviceRepo{
		devices:   []*devicedomain.Device{device("d1", "10.0.0.5", devicedomain.StatusUnknown)},
		updateErr: errors.New("db down"),
	}
	history := &fakeHistoryRepo{err: errors.New("db down")}
	prober := &fakeProber{}
	m := newTestMonitor(devices, history, prober, &fakeAlertSender{})

	report, err := m.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.DevicesChecked != 1 {
		t.Errorf("DevicesChecked = %d, want 1 (device still counted under write failures)", report.DevicesChecked)
	}
}

func TestCheckDevice_FailedProbeKeepsPriorResponseTime(t *testing.T) {
	prior := int64(17)
	d := device("d1", "10.0.0.5", devicedomain.StatusOnline)
	d.LastResponseTimeMs = &prior
	devices := &fakeDeviceRepo{devices: []*devicedomain.Device{d}}
	m := newTestMonitor(devices, &fakeHistoryRepo{}, &fakeProber{}, &fakeAlertSender{})

	if _, err := m.RunDevice(context.Background(), "d1"); err != nil {
		t.Fatalf("RunDevice: %v", err)
	}
	if d.LastResponseTimeMs == nil || *d.LastResponseTimeMs != 17 {
		t.Errorf("LastResponseTimeMs = %v, want prior value 17", d.LastResponseTimeMs)
	}
	if d.Status != devicedomain.StatusOffline {
		t.Errorf("status = %q, want offline", d.Status)
	}
}
