package monitor

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// runMetrics holds the monitor's OTel instruments. With no meter provider
// configured these are no-ops.
type runMetrics struct {
	probes        metric.Int64Counter
	probeDuration metric.Float64Histogram
	alertsSent    metric.Int64Counter
}

func newRunMetrics() *runMetrics {
	meter := otel.Meter("ddaas-companion/monitor/internal/monitor")
	m := &runMetrics{}
	var err error
	if m.probes, err = meter.Int64Counter("monitor.probes",
		metric.WithDescription("Probe attempts by history status")); err != nil {
		log.Printf("monitor: metrics init: %v", err)
	}
	if m.probeDuration, err = meter.Float64Histogram("monitor.probe.duration",
		metric.WithDescription("Per-device probe cycle duration"),
		metric.WithUnit("s")); err != nil {
		log.Printf("monitor: metrics init: %v", err)
	}
	if m.alertsSent, err = meter.Int64Counter("monitor.alerts.sent",
		metric.WithDescription("Alerts dispatched by type")); err != nil {
		log.Printf("monitor: metrics init: %v", err)
	}
	return m
}

func (m *runMetrics) recordProbe(ctx context.Context, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	if m.probes != nil {
		m.probes.Add(ctx, 1, attrs)
	}
	if m.probeDuration != nil {
		m.probeDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func (m *runMetrics) recordAlert(ctx context.Context, alertType string) {
	if m == nil || m.alertsSent == nil {
		return
	}
	m.alertsSent.Add(ctx, 1, metric.WithAttributes(attribute.String("type", alertType)))
}
