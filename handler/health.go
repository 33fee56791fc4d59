package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/robogate/infra/config"
	"github.com/mstgnz/robogate/infra/response"
	"github.com/mstgnz/robogate/provider"
)

// ProviderLister reports which providers are registered and configured
type ProviderLister interface {
	ConfiguredProviders() []string
	DefaultProvider() string
}

// HealthHandler handles health check requests
type HealthHandler struct {
	providers ProviderLister
	version   string
	startTime time.Time
}

// HealthStatus represents overall service health
type HealthStatus struct {
	Status      string        `json:"status"`
	Version     string        `json:"version"`
	Timestamp   time.Time     `json:"timestamp"`
	Uptime      string        `json:"uptime"`
	Environment string        `json:"environment"`
	Providers   []string      `json:"providers"`
	Default     string        `json:"defaultProvider,omitempty"`
	Registered  []string      `json:"registered"`
	System      *SystemHealth `json:"system"`
}

// SystemHealth represents runtime resource usage
type SystemHealth struct {
	GoRoutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	GCRuns     uint32 `json:"gc_runs"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(providers ProviderLister, version string) *HealthHandler {
	return &HealthHandler{
		providers: providers,
		version:   version,
		startTime: time.Now(),
	}
}

// CheckHealth reports "healthy" when at least one provider is configured,
// "degraded" with 503 otherwise
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := HealthStatus{
		Status:      "healthy",
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: config.GetEnv("ENVIRONMENT", "development"),
		Providers:   h.providers.ConfiguredProviders(),
		Default:     h.providers.DefaultProvider(),
		Registered:  provider.GetAvailableProviders(),
		System: &SystemHealth{
			GoRoutines: runtime.NumGoroutine(),
			HeapAlloc:  mem.HeapAlloc,
			GCRuns:     mem.NumGC,
		},
	}

	if len(status.Providers) == 0 {
		status.Status = "degraded"
		response.Success(w, http.StatusServiceUnavailable, "No payment provider configured", status)
		return
	}

	response.Success(w, http.StatusOK, "Service is healthy", status)
}
