package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.ProbeTimeout != "5s" {
		t.Errorf("ProbeTimeout = %q, want %q", cfg.ProbeTimeout, "5s")
	}
	if cfg.ProbeTCPPort != 80 {
		t.Errorf("ProbeTCPPort = %d, want 80", cfg.ProbeTCPPort)
	}
	if cfg.MonitorConcurrency != 1 {
		t.Errorf("MonitorConcurrency = %d, want 1", cfg.MonitorConcurrency)
	}
	if cfg.ResendBaseURL != "https://api.resend.com" {
		t.Errorf("ResendBaseURL = %q, want default", cfg.ResendBaseURL)
	}
	if cfg.KafkaTopic != "device-monitor-events" {
		t.Errorf("KafkaTopic = %q, want default", cfg.KafkaTopic)
	}
	if cfg.KafkaGroupID != "device-monitor-worker" {
		t.Errorf("KafkaGroupID = %q, want default", cfg.KafkaGroupID)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("PROBE_TIMEOUT", "2s")
	os.Setenv("MONITOR_CONCURRENCY", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.ProbeTimeout != "2s" {
		t.Errorf("ProbeTimeout = %q, want %q", cfg.ProbeTimeout, "2s")
	}
	if cfg.MonitorConcurrency != 8 {
		t.Errorf("MonitorConcurrency = %d, want 8", cfg.MonitorConcurrency)
	}
}

func TestLoad_PortRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		err   bool
	}{
		{"valid", "8443", false},
		{"too low", "0", true},
		{"too high", "70000", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("PROBE_TCP_PORT", tc.value)

			_, err := Load()
			if tc.err && err == nil {
				t.Fatal("Load should return error")
			}
			if !tc.err && err != nil {
				t.Fatalf("Load: %v", err)
			}
		})
	}
}

func TestProbeTimeoutDuration(t *testing.T) {
	testCases := []struct {
		value string
		want  time.Duration
	}{
		{"2s", 2 * time.Second},
		{"", 5 * time.Second},
		{"nonsense", 5 * time.Second},
		{"-1s", 5 * time.Second},
	}
	for _, tc := range testCases {
		cfg := &Config{ProbeTimeout: tc.value}
		if got := cfg.ProbeTimeoutDuration(); got != tc.want {
			t.Errorf("ProbeTimeoutDuration(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestKafkaBrokersList(t *testing.T) {
	testCases := []struct {
		value string
		want  int
	}{
		{"", 0},
		{"localhost:9092", 1},
		{"a:9092, b:9092", 2},
		{"a:9092,,  ,b:9092", 2},
	}
	for _, tc := range testCases {
		cfg := &Config{KafkaBrokers: tc.value}
		if got := cfg.KafkaBrokersList(); len(got) != tc.want {
			t.Errorf("KafkaBrokersList(%q) = %v, want %d brokers", tc.value, got, tc.want)
		}
	}
}
