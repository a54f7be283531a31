package startup

import (
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"neighborly/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	Port    string
	DataDir string

	// Location autocomplete proxy
	GeocoderURL      string
	GeocoderAPIKey   string
	AutocompleteTTL  time.Duration
	CacheMaxEntries  int
	RateLimitPerMin  int
	RateLimitBurst   int
	AllowedOrigins   []string
	GeocoderLimit    int
	GeocoderFilter   string

	// Media pipeline
	MaxImageDimension int
	MaxUploadBytes    int64

	// Logging behavior
	LogHealthChecks bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := &Config{
		Port:              getEnv("PORT", "8080"),
		DataDir:           getEnv("DATA_DIR", "/data"),
		GeocoderURL:       getEnv("GEOCODER_URL", "https://api.geoapify.com/v1/geocode/autocomplete"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		AutocompleteTTL:   getEnvDuration("AUTOCOMPLETE_TTL", 5*time.Minute),
		CacheMaxEntries:   getEnvInt("AUTOCOMPLETE_CACHE_MAX", 1000),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_RPM", 30),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS"),
		GeocoderLimit:     getEnvInt("GEOCODER_RESULT_LIMIT", 5),
		GeocoderFilter:    os.Getenv("GEOCODER_REGION_FILTER"),
		MaxImageDimension: getEnvInt("MAX_IMAGE_DIMENSION", 2000),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 15<<20)),
		LogHealthChecks:   getEnvBool("LOG_HEALTH_CHECKS", true),
	}

	logging.Info("  PORT:                  %s", config.Port)
	logging.Info("  DATA_DIR:              %s", config.DataDir)
	logging.Info("  GEOCODER_URL:          %s", config.GeocoderURL)
	logging.Info("  GEOCODER_API_KEY:      %s", maskSecret(config.GeocoderAPIKey))
	logging.Info("  AUTOCOMPLETE_TTL:      %v", config.AutocompleteTTL)
	logging.Info("  AUTOCOMPLETE_CACHE_MAX:%d", config.CacheMaxEntries)
	logging.Info("  RATE_LIMIT_RPM:        %d", config.RateLimitPerMin)
	logging.Info("  RATE_LIMIT_BURST:      %d", config.RateLimitBurst)
	logging.Info("  ALLOWED_ORIGINS:       %s", strings.Join(config.AllowedOrigins, ", "))
	logging.Info("  MAX_IMAGE_DIMENSION:   %d", config.MaxImageDimension)
	logging.Info("  MAX_UPLOAD_BYTES:      %d", config.MaxUploadBytes)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	if config.GeocoderAPIKey == "" {
		logging.Warn("  GEOCODER_API_KEY is not set; location autocomplete will return errors")
	}

	return config, nil
}

// maskSecret hides a secret value in logs while showing whether it is set.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "(set)"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logging.Warn("  Invalid %s=%q, using default %d", key, v, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		logging.Warn("  Invalid %s=%q, using default %v", key, v, fallback)
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: pathTemplate})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("  Failed to enumerate routes: %v", err)
		return
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	for _, r := range routes {
		logging.Info("  %-7s %s", r.Method, r.Path)
	}
}

// LogServerStarted logs the final startup message
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("")
	logging.Info("  [OK] Listening on :%s (started in %v)", port, elapsed)
}

// LogShutdownInitiated logs the beginning of graceful shutdown
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("Received %s, shutting down gracefully...", signal)
}

// LogShutdownStep logs a step in the shutdown process
func LogShutdownStep(step string) {
	logging.Info("  %s...", step)
}

// LogShutdownStepComplete logs completion of a shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs the end of graceful shutdown
func LogShutdownComplete() {
	logging.Info("Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
