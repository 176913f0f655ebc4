// Package entities holds the reference data and chat types shared across the API.
package entities

// Medication is an immutable reference record for a single drug.
type Medication struct {
	ID                   string   `json:"id"`
	GenericName          string   `json:"generic_name"`
	BrandNames           []string `json:"brand_names"`
	DosageForm           string   `json:"dosage_form"`
	Strength             string   `json:"strength"`
	PrescriptionRequired bool     `json:"prescription_required"`
	Indications          []string `json:"indications"`
	Warnings             []string `json:"warnings"`
}

// Names returns the canonical name followed by every brand alias.
func (m Medication) Names() []string {
	names := make([]string, 0, len(m.BrandNames)+1)
	names = append(names, m.GenericName)
	names = append(names, m.BrandNames...)
	return names
}

// MedicationInsight is the per-medication safety summary served by /medications/{id}/insights
type MedicationInsight struct {
	Medication     Medication `json:"medication"`
	SafetyLevel    string     `json:"safety_level"`
	SafetyFactors  []string   `json:"safety_factors"`
	Recommendation string     `json:"recommendation"`
	Disclaimer     string     `json:"disclaimer"`
}

// CatalogueStats summarises the loaded reference data.
type CatalogueStats struct {
	TotalMedications     int      `json:"total_medications"`
	PrescriptionRequired int      `json:"prescription_medications"`
	OverTheCounter       int      `json:"otc_medications"`
	KnownInteractions    int      `json:"known_interactions"`
	DosageForms          []string `json:"dosage_forms"`
}
