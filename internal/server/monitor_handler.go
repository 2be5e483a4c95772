package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ddaas-companion/monitor/internal/monitor"
)

// MonitorRunner is the part of the monitor the HTTP layer needs.
type MonitorRunner interface {
	RunDevice(ctx context.Context, deviceID string) (*monitor.Report, error)
	RunAll(ctx context.Context) (*monitor.Report, error)
}

// MonitorHandler serves the targeted and sweep monitor endpoints.
type MonitorHandler struct {
	runner MonitorRunner
}

// NewMonitorHandler returns a handler backed by the given runner.
func NewMonitorHandler(runner MonitorRunner) *MonitorHandler {
	return &MonitorHandler{runner: runner}
}

type targetedRequest struct {
	DeviceID string `json:"deviceId"`
}

// pingResultJSON mirrors the probe outcome on the wire: responseTime only on
// success, error only on failure.
type pingResultJSON struct {
	Success      bool   `json:"success"`
	ResponseTime *int64 `json:"responseTime,omitempty"`
	Error        string `json:"error,omitempty"`
}

type deviceResultJSON struct {
	DeviceID       string `json:"deviceId"`
	DeviceName     string `json:"deviceName"`
	IP             string `json:"ip"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
	Success        bool   `json:"success"`
	ResponseTime   *int64 `json:"responseTime,omitempty"`
	Error          string `json:"error,omitempty"`
}

// HandleTargeted runs the monitor for one device.
// 400 when the device is missing or has no address; 500 on unexpected failure.
func (h *MonitorHandler) HandleTargeted(w http.ResponseWriter, r *http.Request) {
	var req targetedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := h.runner.RunDevice(r.Context(), req.DeviceID)
	if err != nil {
		if errors.Is(err, monitor.ErrDeviceNotFound) || errors.Is(err, monitor.ErrNoAddress) {
			writeError(w, http.StatusBadRequest, "Device not found or no IP address")
			return
		}
		log.Printf("server: targeted monitor run failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"pingResult": toPingResult(report.Results[0].Outcome),
	})
}

// HandleSweep runs the monitor over all devices with an address.
func (h *MonitorHandler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.RunAll(r.Context())
	if err != nil {
		log.Printf("server: sweep failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch devices")
		return
	}

	results := make([]deviceResultJSON, len(report.Results))
	for i, res := range report.Results {
		pr := toPingResult(res.Outcome)
		results[i] = deviceResultJSON{
			DeviceID:       res.DeviceID,
			DeviceName:     res.DeviceName,
			IP:             res.Address,
			PreviousStatus: string(res.PreviousStatus),
			NewStatus:      string(res.NewStatus),
			Success:        pr.Success,
			ResponseTime:   pr.ResponseTime,
			Error:          pr.Error,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"devicesChecked": report.DevicesChecked,
		"results":        results,
	})
}

func toPingResult(o monitor.Outcome) pingResultJSON {
	out := pingResultJSON{Success: o.Success}
	if o.Success {
		rt := o.ResponseTimeMs
		out.ResponseTime = &rt
	} else {
		out.Error = o.ErrorMessage
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("server: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
