package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// FailureReason classifies a failed probe.
type FailureReason string

const (
	ReasonUnreachable FailureReason = "unreachable"
	ReasonTimeout     FailureReason = "timeout"
	ReasonError       FailureReason = "error"
)

// Outcome is the result of one probe attempt against one address.
type Outcome struct {
	Success bool
	// ResponseTimeMs is the elapsed time from the start of tier 1 to the
	// success of whichever tier succeeded. Only meaningful when Success.
	ResponseTimeMs int64
	// Reason and ErrorMessage are set only when not Success.
	Reason       FailureReason
	ErrorMessage string
}

// Prober determines reachability of a single address.
type Prober interface {
	Probe(ctx context.Context, address string) Outcome
}

// LayeredProber probes with a two-tier fallback: a minimal HTTP HEAD first,
// then a raw TCP connect. Many consumer devices have no open HTTP port but
// accept a TCP handshake, or vice versa; the fallback cuts false "offline"
// classifications without needing raw ICMP.
type LayeredProber struct {
	// Timeout bounds each tier separately.
	Timeout time.Duration
	// TCPPort is the port for the TCP fallback when the address has none.
	TCPPort int

	client *http.Client
	dialer *net.Dialer
}

// NewLayeredProber returns a prober with the given per-tier timeout and TCP
// fallback port. Zero values fall back to 5s and port 80.
func NewLayeredProber(timeout time.Duration, tcpPort int) *LayeredProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if tcpPort <= 0 {
		tcpPort = 80
	}
	return &LayeredProber{
		Timeout: timeout,
		TCPPort: tcpPort,
		client: &http.Client{
			Transport: &http.Transport{DisableKeepAlives: true},
		},
		dialer: &net.Dialer{},
	}
}

// Probe checks the address: HTTP HEAD with a hard timeout, then a TCP connect
// with its own timeout. Any HTTP response, whatever the status code, counts as
// reachable. address is a host or host:port; an explicit port is used for both
// tiers.
func (p *LayeredProber) Probe(ctx context.Context, address string) Outcome {
	if address == "" {
		return Outcome{Reason: ReasonError, ErrorMessage: "empty address"}
	}
	start := time.Now()

	httpErr := p.probeHTTP(ctx, address)
	if httpErr == nil {
		return Outcome{Success: true, ResponseTimeMs: time.Since(start).Milliseconds()}
	}

	tcpErr := p.probeTCP(ctx, address)
	if tcpErr == nil {
		return Outcome{Success: true, ResponseTimeMs: time.Since(start).Milliseconds()}
	}

	return classifyFailure(httpErr, tcpErr)
}

func (p *LayeredProber) probeHTTP(ctx context.Context, address string) error {
	reqCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, "http://"+address, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (p *LayeredProber) probeTCP(ctx context.Context, address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		host, port = address, strconv.Itoa(p.TCPPort)
	}
	dialCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	conn, err := p.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

// classifyFailure maps the two tier errors onto the outcome taxonomy: timeout
// when the budget was exceeded, unreachable for ordinary network refusals,
// error for anything else (e.g. a malformed address).
func classifyFailure(httpErr, tcpErr error) Outcome {
	if isTimeout(tcpErr) && isTimeout(httpErr) {
		return Outcome{
			Reason:       ReasonTimeout,
			ErrorMessage: "Probe timed out",
		}
	}
	var netErr net.Error
	if errors.As(tcpErr, &netErr) || errors.As(httpErr, &netErr) {
		return Outcome{
			Reason:       ReasonUnreachable,
			ErrorMessage: "Device unreachable",
		}
	}
	return Outcome{
		Reason:       ReasonError,
		ErrorMessage: fmt.Sprintf("Probe failed: %v", tcpErr),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
