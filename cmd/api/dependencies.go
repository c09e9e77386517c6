package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/handler"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/remote"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/service"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/session"
	"github.com/FACorreiaa/contact-importer/pkg/config"
	"github.com/FACorreiaa/contact-importer/pkg/cron"
	"github.com/FACorreiaa/contact-importer/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	RemoteClient  *remote.Client
	ImportService *service.ImportService
	Sessions      *session.Store

	ImportHandler *handler.Handler
	Scheduler     *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = metrics.New(d.Registry)
}

// initServices initializes the service layer dependencies
func (d *Dependencies) initServices() {
	d.RemoteClient = remote.NewClient(remote.Config{
		BaseURL:           d.Config.Remote.BaseURL,
		Token:             d.Config.Remote.Token,
		Timeout:           d.Config.Remote.Timeout,
		RequestsPerSecond: float64(d.Config.Remote.RequestsPerSecond),
	}, d.Logger)

	// The store both imports batches and records the audit entry.
	d.ImportService = service.NewImportService(d.RemoteClient, d.Logger).
		WithActivityLogger(d.RemoteClient).
		WithMetrics(d.Metrics).
		WithBatchSize(d.Config.Import.BatchSize)

	d.Sessions = session.NewStore(d.Config.Import.SessionTTL, d.Logger)
	d.Scheduler = cron.NewScheduler(d.Sessions, d.Config.Import.SweepSchedule, d.Logger)

	d.Logger.Info("services initialized")
}

// initHandlers initializes the handler dependencies
func (d *Dependencies) initHandlers() {
	d.ImportHandler = handler.NewHandler(d.Sessions, d.ImportService, d.Config.Import.BatchSize, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup releases background resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
