package handlers

import (
	"fmt"
	"net/http"

	"github.com/cogitto/cogitto-api/engine"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/go-chi/chi/v5"
)

// SearchResult is the body of a catalogue search
type SearchResult struct {
	Query   string                `json:"query"`
	Results []entities.Medication `json:"results"`
	Count   int                   `json:"count"`
}

// FilterResult is the body of the prescription and OTC filters
type FilterResult struct {
	Medications []entities.Medication `json:"medications"`
	Count       int                   `json:"count"`
	Type        string                `json:"type"`
}

// ListMedications returns the whole catalogue
func (h *HTTPHandlerImpl) ListMedications(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.dataStore.GetMedications())
}

// SearchMedications searches generic and brand names
func (h *HTTPHandlerImpl) SearchMedications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.dataStore.Search(query)
	if err != nil {
		h.respondWithFailure(w, r, err)
		return
	}

	// Always return 200 with results array (empty if no matches)
	h.RespondWithJSON(w, http.StatusOK, SearchResult{Query: query, Results: results, Count: len(results)})
}

// FilterPrescription returns prescription-only medications
func (h *HTTPHandlerImpl) FilterPrescription(w http.ResponseWriter, r *http.Request) {
	meds := h.dataStore.FilterByPrescription(true)
	h.RespondWithJSON(w, http.StatusOK, FilterResult{Medications: meds, Count: len(meds), Type: "prescription_required"})
}

// FilterOTC returns over-the-counter medications
func (h *HTTPHandlerImpl) FilterOTC(w http.ResponseWriter, r *http.Request) {
	meds := h.dataStore.FilterByPrescription(false)
	h.RespondWithJSON(w, http.StatusOK, FilterResult{Medications: meds, Count: len(meds), Type: "over_the_counter"})
}

// GetMedication returns one medication by id
func (h *HTTPHandlerImpl) GetMedication(w http.ResponseWriter, r *http.Request) {
	med, ok := h.findMedication(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, med)
}

// MedicationInsights returns the safety summary of one medication
func (h *HTTPHandlerImpl) MedicationInsights(w http.ResponseWriter, r *http.Request) {
	med, ok := h.findMedication(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, engine.MedicationInsight(med))
}

// findMedication resolves the {id} URL parameter and writes the error response on failure
func (h *HTTPHandlerImpl) findMedication(w http.ResponseWriter, r *http.Request) (entities.Medication, bool) {
	id, err := h.validator.ValidateMedicationID(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithFailure(w, r, err)
		return entities.Medication{}, false
	}

	med, ok := h.dataStore.FindByID(id)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("Medication with ID %s not found", id))
		return entities.Medication{}, false
	}
	return med, true
}
