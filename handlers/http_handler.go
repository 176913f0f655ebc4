// Package handlers provides the HTTP request handlers of the Cogitto API.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/cogitto/cogitto-api/chat"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/validation"
)

const APIVersion = "1.0.0"

// Analyzer is the part of the assistant the interaction endpoints use
type Analyzer interface {
	ExtractMentions(text string) []string
	Analyze(medications []string) entities.InteractionReport
	GenerationEnabled() bool
}

// ChatService runs chat sessions
type ChatService interface {
	StartSession(req chat.SessionRequest) (entities.Session, error)
	SendMessage(ctx context.Context, req chat.MessageRequest) (*chat.Reply, error)
	GetConversation(id string) (entities.Conversation, bool)
}

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	analyzer      Analyzer
	chat          ChatService
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, analyzer Analyzer,
	chatService ChatService, healthChecker interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		analyzer:      analyzer,
		chat:          chatService,
		healthChecker: healthChecker,
	}
}

// ServeHTTP answers requests that matched no route
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("No route for %s %s", r.Method, r.URL.Path))
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Service       string         `json:"service"`
	Version       string         `json:"version"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondWithFailure maps rejected input to 400 and anything else to 500
func (h *HTTPHandlerImpl) respondWithFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, validation.ErrInvalidInput) {
		logging.Warn("Unusual user input", "path", r.URL.Path, "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	logging.Error("Request failed", "path", r.URL.Path, "error", err)
	h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeBody reads a JSON request body. Unknown fields are rejected.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body: %v", validation.ErrInvalidInput, err)
	}
	return nil
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// ServiceInfo describes the service and its main endpoints
func (h *HTTPHandlerImpl) ServiceInfo(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":           "Cogitto: Medication AI Assistant",
		"version":           APIVersion,
		"status":            "running",
		"description":       "Medication information, search, interaction checking and a safety-aware assistant",
		"total_medications": len(h.dataStore.GetMedications()),
		"text_generation":   h.analyzer.GenerationEnabled(),
		"features": []string{
			"Medication search by generic or brand name",
			"Drug interaction checking with safety levels",
			"Detailed medication information with warnings",
			"Prescription vs OTC filtering",
			"Chat assistant with risk assessment",
		},
		"endpoints": map[string]string{
			"search":       "/medications/search?q=acetaminophen",
			"details":      "/medications/1",
			"insights":     "/medications/1/insights",
			"list_all":     "/medications",
			"interactions": "/interactions/check?med1=warfarin&med2=ibuprofen",
			"analyze":      "/interactions/analyze",
			"chat":         "/chat/message",
			"stats":        "/stats",
			"metrics":      "/metrics",
		},
	})
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	h.RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Service:       "cogitto-api",
		Version:       APIVersion,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}

// Stats returns catalogue statistics
func (h *HTTPHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.dataStore.Statistics())
}
