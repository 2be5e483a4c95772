package alert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ddaas-companion/monitor/internal/alert/domain"
)

type fakePreferences struct {
	stored  *domain.Preferences
	created []*domain.Preferences
	getErr  error
}

func (r *fakePreferences) GetByOwner(context.Context, string) (*domain.Preferences, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.stored, nil
}

func (r *fakePreferences) Create(_ context.Context, p *domain.Preferences) error {
	r.created = append(r.created, p)
	return nil
}

type fakeAlertHistory struct {
	entries   []*domain.HistoryEntry
	createErr error
}

func (r *fakeAlertHistory) Create(_ context.Context, e *domain.HistoryEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeAlertHistory) ExistsSince(_ context.Context, deviceID, ownerID string, cutoff time.Time) (bool, error) {
	for _, e := range r.entries {
		if e.DeviceID == deviceID && e.OwnerID == ownerID && !e.SentAt.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

type fakeSender struct {
	name string
	err  error
	sent []string // recipients
}

func (s *fakeSender) Name() string { return s.name }

func (s *fakeSender) Send(_ context.Context, recipient, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, recipient)
	return nil
}

func prefsWith(freq domain.Frequency, email, push bool) *domain.Preferences {
	return &domain.Preferences{OwnerID: "u1", EmailEnabled: email, PushEnabled: push, Frequency: freq}
}

func request() Request {
	return Request{DeviceID: "d1", DeviceName: "Garage Pi", OwnerID: "u1", Type: domain.TypeOffline, Email: "u1@example.com"}
}

func TestSend_CreatesDefaultPreferences(t *testing.T) {
	prefs := &fakePreferences{}
	history := &fakeAlertHistory{}
	emailSender := &fakeSender{name: "email"}
	pushSender := &fakeSender{name: "push"}
	d := NewDispatcher(prefs, history, emailSender, pushSender)

	res, err := d.Send(context.Background(), request())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(prefs.created) != 1 {
		t.Fatalf("defaults created = %d, want 1", len(prefs.created))
	}
	created := prefs.created[0]
	if created.Frequency != domain.FrequencyImmediate || !created.EmailEnabled || !created.PushEnabled {
		t.Errorf("defaults = %+v, want immediate/email/push", created)
	}
	if len(res.NotificationMethods) != 2 {
		t.Errorf("methods = %v, want [email push]", res.NotificationMethods)
	}
	if len(history.entries) != 1 {
		t.Errorf("history entries = %d, want 1", len(history.entries))
	}
}

func TestSend_HourlySuppressionWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history := &fakeAlertHistory{entries: []*domain.HistoryEntry{
		{DeviceID: "d1", OwnerID: "u1", SentAt: now.Add(-30 * time.Minute)},
	}}
	emailSender := &fakeSender{name: "email"}
	d := NewDispatcher(&fakePreferences{stored: prefsWith(domain.FrequencyHourly, true, false)}, history, emailSender, nil)
	d.now = func() time.Time { return now }

	res, err := d.Send(context.Background(), request())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !res.Suppressed {
		t.Error("Suppressed = false, want true")
	}
	if len(emailSender.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(emailSender.sent))
	}
	if len(history.entries) != 1 {
		t.Errorf("history entries = %d, want 1 (no new entry for a suppressed alert)", len(history.entries))
	}
}

func TestSend_HourlyThrottleIdempotence(t *testing.T) {
	// Two alert-worthy transitions within the window: exactly one history entry.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history := &fakeAlertHistory{}
	emailSender := &fakeSender{name: "email"}
	d := NewDispatcher(&fakePreferences{stored: prefsWith(domain.FrequencyHourly, true, false)}, history, emailSender, nil)
	d.now = func() time.Time { return now }

	if _, err := d.Send(context.Background(), request()); err != nil {
		t.Fatalf("first Send: %v", err)
	}
	d.now = func() time.Time { return now.Add(45 * time.Minute) }
	res, err := d.Send(context.Background(), request())
	if err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if !res.Suppressed {
		t.Error("second Send not suppressed")
	}
	if len(history.entries) != 1 {
		t.Errorf("history entries = %d, want 1", len(history.entries))
	}
}

func TestSend_ImmediateAllowsRepeats(t *testing.T) {
	history := &fakeAlertHistory{}
	emailSender := &fakeSender{name: "email"}
	d := NewDispatcher(&fakePreferences{stored: prefsWith(domain.FrequencyImmediate, true, false)}, history, emailSender, nil)

	for i := 0; i < 2; i++ {
		if _, err := d.Send(context.Background(), request()); err != nil {
			t.Fatalf("Send #%d: %v", i+1, err)
		}
	}
	if len(history.entries) != 2 {
		t.Errorf("history entries = %d, want 2", len(history.entries))
	}
}

func TestSend_ChannelFailureDoesNotBlockOther(t *testing.T) {
	history := &fakeAlertHistory{}
	emailSender := &fakeSender{name: "email", err: errors.New("resend down")}
	pushSender := &fakeSender{name: "push"}
	d := NewDispatcher(&fakePreferences{stored: prefsWith(domain.FrequencyImmediate, true, true)}, history, emailSender, pushSender)

	res, err := d.Send(context.Background(), request())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(res.NotificationMethods) != 1 || res.NotificationMethods[0] != "push" {
		t.Errorf("methods = %v, want [push]", res.NotificationMethods)
	}
	if len(history.entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history.entries))
	}
	if got := history.entries[0].NotificationMethods; len(got) != 1 || got[0] != "push" {
		t.Errorf("history methods = %v, want [push]", got)
	}
}

func TestSend_AllChannelsFailWritesNoHistory(t *testing.T) {
	history := &fakeAlertHistory{}
	emailSender := &fakeSender{name: "email", err: errors.New("resend down")}
	pushSender := &fakeSender{name: "push", err: errors.New("push down")}
	d := NewDispatcher(&fakePreferences{stored: prefsWith(domain.FrequencyImmediate, true, true)}, history, emailSender, pushSender)

	res, err := d.Send(context.Background(), request())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(res.NotificationMethods) != 0 {
		t.Errorf("methods = %v, want none", res.NotificationMethods)
	}
	if len(history.entries) != 0 {
		t.Errorf("history entries = %d, want 0", len(history.entries))
	}
}

func TestSend_EmailSkippedWithoutRecipient(t *testing.T) {
	history := &fakeAlertHistory{}
	emailSender := &fakeSender{name: "email"}
	pushSender := &fakeSender{name: "push"}
	d := NewDispatcher(&fakePreferences{stored: prefsWith(domain.FrequencyImmediate, true, true)}, history, emailSender, pushSender)

	req := request()
	req.Email = ""
	res, err := d.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(emailSender.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(emailSender.sent))
	}
	if len(res.NotificationMethods) != 1 || res.NotificationMethods[0] != "push" {
		t.Errorf("methods = %v, want [push]", res.NotificationMethods)
	}
}

func TestSend_PreferenceFetchFailure(t *testing.T) {
	d := NewDispatcher(&fakePreferences{getErr: errors.New("db down")}, &fakeAlertHistory{}, &fakeSender{name: "email"}, nil)

	if _, err := d.Send(context.Background(), request()); err == nil {
		t.Fatal("Send should fail when preferences cannot be read")
	}
}

func TestComposeEmail(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	subject, body := composeEmail(request(), now)
	if subject != "Device Alert: Garage Pi is offline" {
		t.Errorf("offline subject = %q", subject)
	}
	if !strings.Contains(body, "Garage Pi") || !strings.Contains(body, "d1") {
		t.Errorf("body missing device details: %q", body)
	}

	req := request()
	req.Type = domain.TypeOnline
	subject, _ = composeEmail(req, now)
	if subject != "Device Alert: Garage Pi is back online" {
		t.Errorf("online subject = %q", subject)
	}
}
