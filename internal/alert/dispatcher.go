// Package alert evaluates preferences and throttling for device status alerts
// and fans them out to the configured notification channels.
package alert

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ddaas-companion/monitor/internal/alert/domain"
	alertrepo "ddaas-companion/monitor/internal/alert/repository"
	"ddaas-companion/monitor/internal/notify"
)

// Request describes one alert to evaluate and dispatch.
type Request struct {
	DeviceID   string
	DeviceName string
	OwnerID    string
	Type       domain.Type
	// Email is the recipient address; email dispatch is skipped when empty.
	Email string
}

// Result reports what the dispatcher did with a request.
type Result struct {
	// NotificationMethods lists the channels that dispatched successfully.
	NotificationMethods []string
	// Suppressed is true when the frequency policy blocked the alert.
	Suppressed bool
	Message    string
}

// Dispatcher evaluates alert preferences and the frequency throttle, sends via
// the enabled channels, and appends an alert history entry when at least one
// channel dispatched.
type Dispatcher struct {
	prefs    alertrepo.PreferencesRepository
	history  alertrepo.HistoryRepository
	throttle *Throttle
	email    notify.Sender
	push     notify.Sender
	now      func() time.Time
}

// NewDispatcher wires a Dispatcher. email and push may be nil to disable a
// channel entirely (e.g. no email API key configured).
func NewDispatcher(prefs alertrepo.PreferencesRepository, history alertrepo.HistoryRepository, email, push notify.Sender) *Dispatcher {
	return &Dispatcher{
		prefs:    prefs,
		history:  history,
		throttle: NewThrottle(history),
		email:    email,
		push:     push,
		now:      time.Now,
	}
}

// Send evaluates and dispatches one alert. A channel failure is logged and
// does not block the other channel; the history entry is written only when at
// least one channel succeeded. Returns an error only when preferences cannot
// be read at all.
func (d *Dispatcher) Send(ctx context.Context, req Request) (*Result, error) {
	prefs, err := d.prefs.GetByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("alert: fetch preferences for %s: %w", req.OwnerID, err)
	}
	if prefs == nil {
		prefs = domain.DefaultPreferences(req.OwnerID)
		if err := d.prefs.Create(ctx, prefs); err != nil {
			log.Printf("alert: failed to create default preferences for %s: %v", req.OwnerID, err)
		}
	}

	now := d.now().UTC()
	allowed, err := d.throttle.Allow(ctx, req.DeviceID, req.OwnerID, prefs.Frequency, now)
	if err != nil {
		// Fail open: a broken history lookup should not silence real alerts.
		log.Printf("alert: throttle check failed for device %s: %v", req.DeviceID, err)
		allowed = true
	}
	if !allowed {
		return &Result{Suppressed: true, Message: "Alert suppressed due to frequency settings"}, nil
	}

	subject, body := composeEmail(req, now)

	var methods []string
	if prefs.EmailEnabled && req.Email != "" && d.email != nil {
		if err := d.email.Send(ctx, req.Email, subject, body); err != nil {
			log.Printf("alert: email dispatch failed for device %s: %v", req.DeviceID, err)
		} else {
			methods = append(methods, d.email.Name())
		}
	}
	if prefs.PushEnabled && d.push != nil {
		if err := d.push.Send(ctx, req.OwnerID, subject, body); err != nil {
			log.Printf("alert: push dispatch failed for device %s: %v", req.DeviceID, err)
		} else {
			methods = append(methods, d.push.Name())
		}
	}

	if len(methods) > 0 {
		entry := &domain.HistoryEntry{
			ID:                  uuid.New().String(),
			DeviceID:            req.DeviceID,
			OwnerID:             req.OwnerID,
			Type:                req.Type,
			NotificationMethods: methods,
			SentAt:              now,
		}
		if err := d.history.Create(ctx, entry); err != nil {
			log.Printf("alert: failed to record alert history for device %s: %v", req.DeviceID, err)
		}
	}

	return &Result{
		NotificationMethods: methods,
		Message:             fmt.Sprintf("Alert sent via: %s", strings.Join(methods, ", ")),
	}, nil
}

func composeEmail(req Request, now time.Time) (subject, body string) {
	if req.Type == domain.TypeOffline {
		subject = fmt.Sprintf("Device Alert: %s is offline", req.DeviceName)
	} else {
		subject = fmt.Sprintf("Device Alert: %s is back online", req.DeviceName)
	}
	body = fmt.Sprintf(`<h2>Device Status Alert</h2>
<p>Your device <strong>%s</strong> is now <strong>%s</strong>.</p>
<p>Time: %s</p>
<p>Device ID: %s</p>
<hr>
<p>This is an automated alert from your DDaaS Companion app.</p>`,
		req.DeviceName, req.Type, now.Format(time.RFC1123), req.DeviceID)
	return subject, body
}
