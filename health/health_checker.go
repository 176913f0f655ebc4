// Package health reports whether the reference data is served and whether
// answers come from the text generator or the local fallback.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/cogitto/cogitto-api/interfaces"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// SessionCounter reports live chat sessions
type SessionCounter interface {
	ActiveSessions() int
}

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore         interfaces.DataStore
	generationEnabled bool
	sessions          SessionCounter
}

// NewHealthChecker creates a new health checker with injected dependencies.
// sessions may be nil.
func NewHealthChecker(dataStore interfaces.DataStore, generationEnabled bool, sessions SessionCounter) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore:         dataStore,
		generationEnabled: generationEnabled,
		sessions:          sessions,
	}
}

// HealthCheck returns the status, data-related details and the HTTP code.
// Without a generator the service still answers from its knowledge base, so
// it is degraded but keeps serving 200.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	medications := len(h.dataStore.GetMedications())
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()

	switch {
	case medications == 0:
		status = StatusUnhealthy
		httpStatus = http.StatusServiceUnavailable

	case !h.generationEnabled:
		status = StatusDegraded
		httpStatus = http.StatusOK

	default:
		status = StatusHealthy
		httpStatus = http.StatusOK
	}

	generation := "enabled"
	if !h.generationEnabled {
		generation = "fallback_only"
	}

	data = map[string]any{
		"medications":     medications,
		"interactions":    h.dataStore.GetInteractionCount(),
		"is_updating":     isUpdating,
		"text_generation": generation,
	}
	if !lastUpdate.IsZero() {
		data["last_update"] = lastUpdate.Format(time.RFC3339)
		data["data_age_hours"] = math.Round(time.Since(lastUpdate).Hours()*10) / 10
	}
	if h.sessions != nil {
		data["active_sessions"] = h.sessions.ActiveSessions()
	}

	return status, data, httpStatus
}
