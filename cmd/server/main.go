package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	globalotel "go.opentelemetry.io/otel"

	"ddaas-companion/monitor/internal/alert"
	alertrepo "ddaas-companion/monitor/internal/alert/repository"
	"ddaas-companion/monitor/internal/config"
	"ddaas-companion/monitor/internal/db"
	devicerepo "ddaas-companion/monitor/internal/device/repository"
	"ddaas-companion/monitor/internal/monitor"
	"ddaas-companion/monitor/internal/notify"
	"ddaas-companion/monitor/internal/notify/email"
	"ddaas-companion/monitor/internal/notify/push"
	"ddaas-companion/monitor/internal/pinghistory"
	historyrepo "ddaas-companion/monitor/internal/pinghistory/repository"
	"ddaas-companion/monitor/internal/server"
	"ddaas-companion/monitor/internal/telemetry"
	"ddaas-companion/monitor/internal/telemetry/otel"
	"ddaas-companion/monitor/internal/telemetry/producer"
	"ddaas-companion/monitor/internal/user"
	userrepo "ddaas-companion/monitor/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "device-monitor", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	globalotel.SetTracerProvider(providers.TracerProvider)
	globalotel.SetMeterProvider(providers.MeterProvider)

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	var emitter telemetry.EventEmitter
	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.KafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	if kafkaProducer != nil {
		emitter = kafkaProducer
		defer kafkaProducer.Close()
	}

	var emailSender notify.Sender
	if cfg.ResendAPIKey != "" {
		emailSender = email.NewResendClient(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.AlertEmailFrom)
	}
	dispatcher := alert.NewDispatcher(
		alertrepo.NewPostgresPreferencesRepository(database),
		alertrepo.NewPostgresHistoryRepository(database),
		emailSender,
		push.NewLogSender(),
	)

	mon := monitor.New(
		devicerepo.NewPostgresRepository(database),
		pinghistory.NewRecorder(historyrepo.NewPostgresRepository(database)),
		user.NewDirectory(userrepo.NewPostgresRepository(database)),
		dispatcher,
		monitor.NewLayeredProber(cfg.ProbeTimeoutDuration(), cfg.ProbeTCPPort),
		monitor.Options{Concurrency: cfg.MonitorConcurrency, Emitter: emitter},
	)

	router := server.NewRouter(server.NewMonitorHandler(mon), server.NewAlertHandler(dispatcher))
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	// Give in-flight async event emits time to land before closing providers.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
