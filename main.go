package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neighborly/internal/cache"
	"neighborly/internal/geocode"
	"neighborly/internal/handlers"
	"neighborly/internal/logging"
	"neighborly/internal/media"
	"neighborly/internal/middleware"
	"neighborly/internal/ratelimit"
	"neighborly/internal/startup"
	"neighborly/internal/storage"

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

	// Initialize libvips for webp export
	media.InitVips()

	// Initialize query cache
	store := cache.NewStore(config.CacheMaxEntries)

	// Initialize rate limiter
	limiter := ratelimit.New(config.RateLimitPerMin, config.RateLimitBurst)

	// Initialize geocoder client
	geocoder := geocode.NewClient(config.GeocoderURL, config.GeocoderAPIKey, config.GeocoderLimit, config.GeocoderFilter)
	if !geocoder.Configured() {
		logging.Warn("Geocoder credential is not set; autocomplete will be unavailable")
	}

	// Initialize blob storage
	blobs, err := storage.NewDiskStore(config.DataDir)
	if err != nil {
		startup.LogFatal("Failed to initialize blob storage: %v", err)
	}

	// Initialize handlers
	h := handlers.New(store, limiter, geocoder, blobs, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router)

	// Apply CORS middleware
	corsHandler := middleware.CORS(config.AllowedOrigins)(router)

	// Apply metrics middleware
	meteredHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(corsHandler)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(meteredHandler)

	// Apply request ID middleware
	handler := middleware.RequestID(loggedHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv)

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

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/location-autocomplete", h.LocationAutocomplete).Methods("GET")
	api.HandleFunc("/avatar", h.UploadAvatar).Methods("POST")

	return r
}

func handleShutdown(srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Releasing image library resources")
	media.ShutdownVips()
	startup.LogShutdownStepComplete("Image library released")

	startup.LogShutdownComplete()
}
