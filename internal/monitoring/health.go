package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker reports liveness of the scanner process.
type HealthChecker struct {
	mu          sync.RWMutex
	lastScan    time.Time
	lastBatch   int
	errors      []string
}

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastScan  time.Time `json:"last_scan"`
	LastBatch int       `json:"last_batch_symbols"`
	Uptime    string    `json:"uptime"`
	Errors    []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// RecordScan notes a completed batch scan.
func (h *HealthChecker) RecordScan(symbols int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastScan = time.Now()
	h.lastBatch = symbols
}

// RecordError appends a process-level error to the health report.
func (h *HealthChecker) RecordError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
}

// ServeHTTP serves the health endpoint.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastScan:  h.lastScan,
		LastBatch: h.lastBatch,
		Uptime:    time.Since(startTime).String(),
		Errors:    h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
