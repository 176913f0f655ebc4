package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/cogitto/cogitto-api/engine"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/metrics"
	"github.com/cogitto/cogitto-api/validation"
)

// InteractionCheck is the body of a pairwise interaction check
type InteractionCheck struct {
	Medication1      string            `json:"medication1"`
	Medication2      string            `json:"medication2"`
	InteractionFound bool              `json:"interaction_found"`
	Severity         entities.Severity `json:"severity,omitempty"`
	Description      string            `json:"description,omitempty"`
	Recommendation   string            `json:"recommendation,omitempty"`
	Disclaimer       string            `json:"disclaimer"`
}

// AnalyzeRequest lists medications, free text, or both
type AnalyzeRequest struct {
	Medications []string `json:"medications"`
	Text        string   `json:"text"`
}

// AnalyzeResult is the interaction report for an AnalyzeRequest
type AnalyzeResult struct {
	Medications      []string                     `json:"medications"`
	InteractionFound bool                         `json:"interaction_found"`
	HighestSeverity  entities.Severity            `json:"highest_severity,omitempty"`
	Warnings         []string                     `json:"warnings"`
	Interactions     []entities.InteractionDetail `json:"interactions"`
	Disclaimer       string                       `json:"disclaimer"`
}

// CheckInteraction looks up a single pair given as med1 and med2
func (h *HTTPHandlerImpl) CheckInteraction(w http.ResponseWriter, r *http.Request) {
	med1, err := h.validator.ValidateMedicationName(r.URL.Query().Get("med1"))
	if err != nil {
		h.respondWithFailure(w, r, fmt.Errorf("med1: %w", err))
		return
	}
	med2, err := h.validator.ValidateMedicationName(r.URL.Query().Get("med2"))
	if err != nil {
		h.respondWithFailure(w, r, fmt.Errorf("med2: %w", err))
		return
	}

	in, found := h.dataStore.LookupInteraction(h.canonicalName(med1), h.canonicalName(med2))
	metrics.RecordInteractionCheck(found)

	check := InteractionCheck{
		Medication1:      med1,
		Medication2:      med2,
		InteractionFound: found,
		Disclaimer:       engine.InteractionDisclaimer(found),
	}
	if found {
		check.Severity = in.Severity
		check.Description = in.Description
		check.Recommendation = in.Recommendation
	}
	h.RespondWithJSON(w, http.StatusOK, check)
}

// AnalyzeInteractions reports every known interaction among the listed
// medications and those mentioned in the text
func (h *HTTPHandlerImpl) AnalyzeInteractions(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.respondWithFailure(w, r, err)
		return
	}

	names, err := h.analysisNames(req)
	if err != nil {
		h.respondWithFailure(w, r, err)
		return
	}

	report := h.analyzer.Analyze(names)
	metrics.RecordInteractionCheck(!report.Empty())

	result := AnalyzeResult{
		Medications:      names,
		InteractionFound: !report.Empty(),
		Warnings:         report.Warnings,
		Interactions:     report.Details,
		Disclaimer:       engine.InteractionDisclaimer(!report.Empty()),
	}
	for _, d := range report.Details {
		if d.Severity.Rank() > result.HighestSeverity.Rank() {
			result.HighestSeverity = d.Severity
		}
	}
	h.RespondWithJSON(w, http.StatusOK, result)
}

// analysisNames validates the request and returns the canonical names to
// check, listed medications first, without duplicates
func (h *HTTPHandlerImpl) analysisNames(req AnalyzeRequest) ([]string, error) {
	if len(req.Medications) == 0 && strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: provide medications or text", validation.ErrInvalidInput)
	}
	if len(req.Medications) > validation.MaxMedicationsInput {
		return nil, fmt.Errorf("%w: too many medications: maximum %d", validation.ErrInvalidInput, validation.MaxMedicationsInput)
	}

	names := make([]string, 0, len(req.Medications))
	add := func(name string) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	for _, raw := range req.Medications {
		name, err := h.validator.ValidateMedicationName(raw)
		if err != nil {
			return nil, err
		}
		add(h.canonicalName(name))
	}

	if strings.TrimSpace(req.Text) != "" {
		text, err := h.validator.ValidateChatMessage(req.Text)
		if err != nil {
			return nil, err
		}
		for _, name := range h.analyzer.ExtractMentions(text) {
			add(name)
		}
	}
	return names, nil
}

// canonicalName maps a brand name to its normalized generic name; unknown
// names are only normalized
func (h *HTTPHandlerImpl) canonicalName(name string) string {
	if med, ok := h.dataStore.FindByName(name); ok {
		return entities.NormalizeName(med.GenericName)
	}
	return entities.NormalizeName(name)
}
