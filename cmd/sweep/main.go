// sweep runs one monitor pass over all devices with an address and exits.
// Intended for cron/scheduler use; the HTTP server's GET /monitor does the same.
package main

import (
	"context"
	"log"
	"time"

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
	"ddaas-companion/monitor/internal/telemetry"
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Println("starting device sweep...")
	report, err := mon.RunAll(ctx)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}
	for _, res := range report.Results {
		if res.Outcome.Success {
			log.Printf("sweep: %s (%s) %s -> %s, %dms", res.DeviceID, res.Address, res.PreviousStatus, res.NewStatus, res.Outcome.ResponseTimeMs)
		} else {
			log.Printf("sweep: %s (%s) %s -> %s, %s", res.DeviceID, res.Address, res.PreviousStatus, res.NewStatus, res.Outcome.ErrorMessage)
		}
	}
	log.Printf("sweep complete: checked %d devices", report.DevicesChecked)

	// Let async event emits drain before the producer closes.
	time.Sleep(telemetry.ShutdownDrainDuration)
}
