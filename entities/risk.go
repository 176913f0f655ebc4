package entities

// RiskLevel is the overall classification attached to a user query.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank orders risk levels: low < medium < high < critical.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	}
	return 0
}

// RiskAssessment is the classifier output for a single query.
type RiskAssessment struct {
	Level                RiskLevel `json:"risk_level"`
	RequiresConsultation bool      `json:"requires_consultation"`
}
