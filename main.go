package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-broker/internal/broker"
	"media-broker/internal/converter"
	"media-broker/internal/database"
	"media-broker/internal/handlers"
	"media-broker/internal/logging"
	"media-broker/internal/metrics"
	"media-broker/internal/middleware"
	"media-broker/internal/sandbox"
	"media-broker/internal/startup"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()

	// Initialize the conversion cache
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize conversion cache: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize the broker
	b := broker.New(db, config.Ceiling)
	startup.LogBrokerInit(config.Ceiling)

	// Initialize the sandbox invoker and the producer factory on top of it
	translator := sandbox.NewPathTranslator(config.WorkDir, config.MountPoint)
	invoker := sandbox.NewInvoker(config.ContainerName, translator, config.TranscodeTimeout)
	conv := converter.New(invoker, config.DownloadDir, config.ArtifactDir)
	startup.LogSandboxInit(config.ContainerName, config.MountPoint, config.TranscodeTimeout)

	// Initialize handlers
	h := handlers.New(b, conv, db, config)

	// Setup router
	router := setupRouter(h)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	metricsConfig := middleware.DefaultMetricsConfig()
	handler := middleware.Metrics(metricsConfig)(loggedHandler)

	// Start the gauge collector and the metrics endpoint
	collector := metrics.NewCollector(&statsAdapter{broker: b, db: db}, 15*time.Second)
	collector.Start()
	if config.MetricsEnabled {
		go serveMetrics(config.MetricsPort)
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, collector, db)

	// Start server
	startup.LogServerStarted(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/convert", h.Convert).Methods("POST")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/cache/clear", h.ClearCache).Methods("POST")

	return r
}

func serveMetrics(port string) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	logging.Info("Metrics endpoint listening on :%s/metrics", port)
	if err := http.ListenAndServe(":"+port, m); err != nil && err != http.ErrServerClosed {
		logging.Error("Metrics server error: %v", err)
	}
}

// statsAdapter feeds broker and cache numbers to the metrics collector.
type statsAdapter struct {
	broker *broker.Broker
	db     *database.Database
}

func (a *statsAdapter) GetStats() metrics.Stats {
	s := a.broker.Stats()

	cached, err := a.db.Count(context.Background())
	if err != nil {
		logging.Warn("Failed to count cached conversions for metrics: %v", err)
	}

	return metrics.Stats{
		ActiveProducers:   s.Active,
		QueuedRequests:    s.Queued,
		InFlightKeys:      s.InFlightKeys,
		AdmissionCeiling:  s.Ceiling,
		CachedConversions: cached,
	}
}

func handleShutdown(srv *http.Server, collector *metrics.Collector, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	startup.LogShutdownStep("Closing conversion cache")
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	}

	startup.LogShutdownComplete()
}
