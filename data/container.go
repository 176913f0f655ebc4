// Package data provides thread-safe storage for the reference data.
// The DataContainer publishes an immutable snapshot through atomic.Value so
// readers never block and a reload swaps everything at once.
package data

import (
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/validation"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// snapshot is never mutated after it is stored
type snapshot struct {
	medications  []entities.Medication
	byID         map[string]entities.Medication
	byName       map[string]entities.Medication // folded generic and brand names
	interactions *entities.InteractionTable
}

// DataContainer holds the reference data behind an atomic pointer
type DataContainer struct {
	current         atomic.Value // *snapshot
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
	validator       interfaces.DataValidator
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{validator: validation.NewDataValidator()}
	dc.current.Store(buildSnapshot(&entities.Dataset{}))
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

func buildSnapshot(ds *entities.Dataset) *snapshot {
	s := &snapshot{
		medications:  make([]entities.Medication, 0, len(ds.Medications)),
		byID:         make(map[string]entities.Medication, len(ds.Medications)),
		byName:       make(map[string]entities.Medication, len(ds.Medications)*2),
		interactions: entities.NewInteractionTable(ds.Interactions),
	}
	for _, med := range ds.Medications {
		s.medications = append(s.medications, med)
		s.byID[med.ID] = med
		for _, name := range med.Names() {
			key := entities.FoldName(name)
			if _, taken := s.byName[key]; !taken {
				s.byName[key] = med
			}
		}
	}
	return s
}

func (dc *DataContainer) load() *snapshot {
	if v := dc.current.Load(); v != nil {
		if s, ok := v.(*snapshot); ok {
			return s
		}
	}

	logging.Warn("Reference data snapshot is empty or invalid")
	return buildSnapshot(&entities.Dataset{})
}

// GetMedications returns the catalogue in load order
func (dc *DataContainer) GetMedications() []entities.Medication {
	return dc.load().medications
}

// GetMedicationsMap returns the catalogue keyed by id for O(1) lookups
func (dc *DataContainer) GetMedicationsMap() map[string]entities.Medication {
	return dc.load().byID
}

// FindByID returns the medication with the given id
func (dc *DataContainer) FindByID(id string) (entities.Medication, bool) {
	med, ok := dc.load().byID[id]
	return med, ok
}

// FindByName resolves a generic or brand name, ignoring case and accents
func (dc *DataContainer) FindByName(name string) (entities.Medication, bool) {
	med, ok := dc.load().byName[entities.FoldName(name)]
	return med, ok
}

// Search returns medications whose generic or brand name contains query.
// The query must pass validation; an empty result is not an error.
func (dc *DataContainer) Search(query string) ([]entities.Medication, error) {
	query, err := dc.validator.ValidateSearchQuery(query)
	if err != nil {
		return nil, err
	}

	needle := entities.FoldName(query)
	results := make([]entities.Medication, 0)
	for _, med := range dc.load().medications {
		if slices.ContainsFunc(med.Names(), func(name string) bool {
			return strings.Contains(entities.FoldName(name), needle)
		}) {
			results = append(results, med)
		}
	}
	return results, nil
}

// FilterByPrescription returns prescription-only or over-the-counter medications
func (dc *DataContainer) FilterByPrescription(required bool) []entities.Medication {
	results := make([]entities.Medication, 0)
	for _, med := range dc.load().medications {
		if med.PrescriptionRequired == required {
			results = append(results, med)
		}
	}
	return results
}

// Statistics summarises the current snapshot
func (dc *DataContainer) Statistics() entities.CatalogueStats {
	s := dc.load()
	stats := entities.CatalogueStats{
		TotalMedications:  len(s.medications),
		KnownInteractions: s.interactions.Len(),
		DosageForms:       []string{},
	}
	for _, med := range s.medications {
		if med.PrescriptionRequired {
			stats.PrescriptionRequired++
		} else {
			stats.OverTheCounter++
		}
		if med.DosageForm != "" && !slices.Contains(stats.DosageForms, med.DosageForm) {
			stats.DosageForms = append(stats.DosageForms, med.DosageForm)
		}
	}
	slices.Sort(stats.DosageForms)
	return stats
}

// LookupInteraction returns the entry for the unordered pair, if any
func (dc *DataContainer) LookupInteraction(a, b string) (entities.Interaction, bool) {
	return dc.load().interactions.Lookup(a, b)
}

// GetInteractionCount returns the number of registered pairs
func (dc *DataContainer) GetInteractionCount() int {
	return dc.load().interactions.Len()
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically replaces the snapshot
func (dc *DataContainer) UpdateData(ds *entities.Dataset) {
	if ds == nil {
		ds = &entities.Dataset{}
	}
	dc.current.Store(buildSnapshot(ds))
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
