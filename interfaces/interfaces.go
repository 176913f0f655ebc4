// Package interfaces defines core abstractions for the Cogitto API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/cogitto/cogitto-api/entities"
)

// DataQualityReport provides a summary of data quality issues
type DataQualityReport struct {
	DuplicateIDs                  []string
	DuplicateNames                []string
	MedicationsWithoutWarnings    int
	MedicationsWithoutIndications int
	MedicationsWithoutBrands      int
	UnknownInteractionPairs       []string // "a + b" pairs naming a medication absent from the catalogue
}

// DataStore defines the contract for reference data access.
// Implementations publish immutable snapshots so readers never block.
type DataStore interface {
	// Catalogue
	GetMedications() []entities.Medication
	GetMedicationsMap() map[string]entities.Medication
	FindByID(id string) (entities.Medication, bool)
	FindByName(name string) (entities.Medication, bool)
	Search(query string) ([]entities.Medication, error)
	FilterByPrescription(required bool) []entities.Medication
	Statistics() entities.CatalogueStats

	// Interactions
	LookupInteraction(a, b string) (entities.Interaction, bool)
	GetInteractionCount() int

	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(ds *entities.Dataset)
	BeginUpdate() bool
	EndUpdate()
}

// Loader reads the reference dataset from its source.
type Loader interface {
	Load(ctx context.Context) (*entities.Dataset, error)
	Source() string
}

// Prompt is the pair of messages sent to a text generator.
type Prompt struct {
	System string
	User   string
}

// Generator produces free text for a prompt. Implementations must honour
// ctx cancellation; the caller owns the deadline.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Model() string
}

// Scheduler defines the contract for background jobs.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	ServiceInfo(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)

	ListMedications(w http.ResponseWriter, r *http.Request)
	SearchMedications(w http.ResponseWriter, r *http.Request)
	FilterPrescription(w http.ResponseWriter, r *http.Request)
	FilterOTC(w http.ResponseWriter, r *http.Request)
	GetMedication(w http.ResponseWriter, r *http.Request)
	MedicationInsights(w http.ResponseWriter, r *http.Request)

	CheckInteraction(w http.ResponseWriter, r *http.Request)
	AnalyzeInteractions(w http.ResponseWriter, r *http.Request)

	StartSession(w http.ResponseWriter, r *http.Request)
	SendMessage(w http.ResponseWriter, r *http.Request)
	GetConversation(w http.ResponseWriter, r *http.Request)
	ChatDemo(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status, its details and the HTTP code to serve
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataValidator defines the contract for data and input validation.
// Input validation errors wrap validation.ErrInvalidInput.
type DataValidator interface {
	ValidateMedication(m *entities.Medication) error
	ValidateDataIntegrity(ds *entities.Dataset) error
	ReportDataQuality(ds *entities.Dataset) *DataQualityReport

	ValidateInput(input string) error
	ValidateSearchQuery(query string) (string, error)
	ValidateMedicationID(id string) (string, error)
	ValidateMedicationName(name string) (string, error)
	ValidateChatMessage(message string) (string, error)
}
