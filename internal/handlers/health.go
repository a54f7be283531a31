package handlers

import (
	"net/http"
	"runtime"
	"time"

	"neighborly/internal/media"
	"neighborly/internal/startup"
)

const statusHealthy = "healthy"

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Subsystem state
	CacheEntries       int  `json:"cacheEntries"`
	GeocoderConfigured bool `json:"geocoderConfigured"`
	WebPAvailable      bool `json:"webpAvailable"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:             statusHealthy,
		Ready:              true,
		Version:            startup.Version,
		Uptime:             time.Since(h.started).Round(time.Second).String(),
		CacheEntries:       h.cache.Len(),
		GeocoderConfigured: h.geocoder.Configured(),
		WebPAvailable:      media.IsVipsAvailable(),
		GoVersion:          runtime.Version(),
		NumCPU:             runtime.NumCPU(),
		NumGoroutine:       runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// LivenessCheck reports that the process is alive
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "alive"})
}

// ReadinessCheck reports whether the service can take traffic. There is no
// warmup phase; once the listener is up we are ready.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"ready": true})
}
