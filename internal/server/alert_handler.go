package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"ddaas-companion/monitor/internal/alert"
	alertdomain "ddaas-companion/monitor/internal/alert/domain"
)

// AlertDispatcher is the part of the alert subsystem the HTTP layer needs.
type AlertDispatcher interface {
	Send(ctx context.Context, req alert.Request) (*alert.Result, error)
}

// AlertHandler serves the internal alert dispatch endpoint, invoked by the
// monitor (or an operator), not by end users.
type AlertHandler struct {
	dispatcher AlertDispatcher
}

// NewAlertHandler returns a handler backed by the given dispatcher.
func NewAlertHandler(dispatcher AlertDispatcher) *AlertHandler {
	return &AlertHandler{dispatcher: dispatcher}
}

type alertRequest struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	UserID     string `json:"userId"`
	AlertType  string `json:"alertType"`
	UserEmail  string `json:"userEmail"`
}

// HandleSend evaluates preferences and throttling for one alert and dispatches
// it via the enabled channels.
func (h *AlertHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	alertType := alertdomain.Type(req.AlertType)
	if alertType != alertdomain.TypeOnline && alertType != alertdomain.TypeOffline {
		writeError(w, http.StatusBadRequest, "alertType must be online or offline")
		return
	}

	name := req.DeviceName
	if name == "" {
		name = "Unknown Device"
	}

	res, err := h.dispatcher.Send(r.Context(), alert.Request{
		DeviceID:   req.DeviceID,
		DeviceName: name,
		OwnerID:    req.UserID,
		Type:       alertType,
		Email:      req.UserEmail,
	})
	if err != nil {
		log.Printf("server: alert dispatch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if res.Suppressed {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": res.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"notificationMethods": res.NotificationMethods,
		"message":             res.Message,
	})
}
