package engine

import (
	"fmt"
	"strings"

	"github.com/cogitto/cogitto-api/entities"
)

// monitoringKeywords in a warning mean the drug needs follow-up
var monitoringKeywords = []string{"monitor", "toxicity", "bleeding", "liver", "kidney"}

const (
	SafetyLow    = "low"
	SafetyMedium = "medium"
	SafetyHigh   = "high"

	FactorPrescriptionRequired = "prescription_required"
	FactorRequiresMonitoring   = "requires_monitoring"
)

// MedicationInsight derives the safety summary for one catalogue record.
func MedicationInsight(med entities.Medication) entities.MedicationInsight {
	level := SafetyLow
	factors := []string{}

	if med.PrescriptionRequired {
		level = SafetyMedium
		factors = append(factors, FactorPrescriptionRequired)
	}

	for _, warning := range med.Warnings {
		if containsAny(strings.ToLower(warning), monitoringKeywords) {
			level = SafetyHigh
			factors = append(factors, FactorRequiresMonitoring)
			break
		}
	}

	return entities.MedicationInsight{
		Medication:     med,
		SafetyLevel:    level,
		SafetyFactors:  factors,
		Recommendation: insightRecommendation(med.GenericName, level),
		Disclaimer:     InsightDisclaimer,
	}
}

func insightRecommendation(name, level string) string {
	switch level {
	case SafetyHigh:
		return fmt.Sprintf("%s requires careful monitoring. Consult your healthcare provider.", name)
	case SafetyMedium:
		return fmt.Sprintf("%s is prescription-only. Follow your doctor's instructions.", name)
	default:
		return fmt.Sprintf("%s is generally safe when used as directed.", name)
	}
}
