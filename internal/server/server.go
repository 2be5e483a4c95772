// Package server exposes the monitor and alert dispatch over HTTP.
package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routing for the monitor service.
func NewRouter(monitorHandler *MonitorHandler, alertHandler *AlertHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Get("/monitor", monitorHandler.HandleSweep)
	r.Post("/monitor", monitorHandler.HandleTargeted)
	r.Post("/alerts", alertHandler.HandleSend)

	return r
}
