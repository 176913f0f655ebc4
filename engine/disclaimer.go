package engine

import "github.com/cogitto/cogitto-api/entities"

const (
	DisclaimerCritical = "CRITICAL: This query involves potentially serious medical concerns. Please seek immediate medical attention."
	DisclaimerHigh     = "IMPORTANT: Please consult your healthcare provider or pharmacist immediately about this medication concern."
	DisclaimerMedium   = "Please discuss this information with your pharmacist or healthcare provider."
	DisclaimerLow      = "Cogitto provides educational information only. Always consult your healthcare provider for medical advice."

	InteractionFoundDisclaimer = "Always consult your pharmacist or healthcare provider about drug interactions."
	NoInteractionDisclaimer    = "No known major interactions found in our database. This is not comprehensive - always consult your pharmacist."

	InsightDisclaimer = "Cogitto provides educational information only. Always consult your healthcare provider."
)

// Disclaimer returns the fixed text attached to an answer of the given risk.
// Unknown levels get the low-risk text.
func Disclaimer(level entities.RiskLevel) string {
	switch level {
	case entities.RiskCritical:
		return DisclaimerCritical
	case entities.RiskHigh:
		return DisclaimerHigh
	case entities.RiskMedium:
		return DisclaimerMedium
	default:
		return DisclaimerLow
	}
}

// InteractionDisclaimer picks the text for a pairwise interaction check.
func InteractionDisclaimer(found bool) string {
	if found {
		return InteractionFoundDisclaimer
	}
	return NoInteractionDisclaimer
}
