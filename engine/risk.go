package engine

import (
	"slices"
	"strings"

	"github.com/cogitto/cogitto-api/entities"
)

// RiskPolicy holds the keyword sets the classifier works from. Every phrase
// is matched case-insensitively as a substring.
type RiskPolicy struct {
	EmergencyKeywords   []string // in the query
	EscalationPhrases   []string // in the response
	SeverePhrases       []string // in the response
	HighRiskMedications []string // canonical names
	SensitiveKeywords   []string // in the query
	ModeratePhrases     []string // in the response
	ReferralPhrases     []string // in the response, for the consultation flag
}

// DefaultRiskPolicy returns the stock keyword sets.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		EmergencyKeywords:   []string{"emergency", "overdose", "poisoning"},
		EscalationPhrases:   []string{"call 911", "emergency"},
		SeverePhrases:       []string{"major", "contraindicated"},
		HighRiskMedications: []string{"warfarin"},
		SensitiveKeywords:   []string{"pregnant", "pregnancy", "breastfeeding"},
		ModeratePhrases:     []string{"moderate"},
		ReferralPhrases:     []string{"consult", "see your doctor", "healthcare provider"},
	}
}

// riskInput is the lower-cased material a rule looks at
type riskInput struct {
	query       string
	response    string
	medications []string
}

type riskRule struct {
	name  string
	level entities.RiskLevel
	match func(in riskInput) bool
}

// RiskClassifier applies an ordered rule list; the first matching rule
// decides the level and anything unmatched is low.
type RiskClassifier struct {
	rules    []riskRule
	referral []string
}

// withDefaults fills nil keyword sets from DefaultRiskPolicy. An empty,
// non-nil set stays empty.
func (p RiskPolicy) withDefaults() RiskPolicy {
	d := DefaultRiskPolicy()
	if p.EmergencyKeywords == nil {
		p.EmergencyKeywords = d.EmergencyKeywords
	}
	if p.EscalationPhrases == nil {
		p.EscalationPhrases = d.EscalationPhrases
	}
	if p.SeverePhrases == nil {
		p.SeverePhrases = d.SeverePhrases
	}
	if p.HighRiskMedications == nil {
		p.HighRiskMedications = d.HighRiskMedications
	}
	if p.SensitiveKeywords == nil {
		p.SensitiveKeywords = d.SensitiveKeywords
	}
	if p.ModeratePhrases == nil {
		p.ModeratePhrases = d.ModeratePhrases
	}
	if p.ReferralPhrases == nil {
		p.ReferralPhrases = d.ReferralPhrases
	}
	return p
}

// NewRiskClassifier compiles policy into the ordered rule list. Nil keyword
// sets take their default values.
func NewRiskClassifier(policy RiskPolicy) *RiskClassifier {
	policy = policy.withDefaults()
	emergency := lowerAll(policy.EmergencyKeywords)
	escalation := lowerAll(policy.EscalationPhrases)
	severe := lowerAll(policy.SeverePhrases)
	highRisk := lowerAll(policy.HighRiskMedications)
	sensitive := lowerAll(policy.SensitiveKeywords)
	moderate := lowerAll(policy.ModeratePhrases)

	return &RiskClassifier{
		referral: lowerAll(policy.ReferralPhrases),
		rules: []riskRule{
			{"emergency_query", entities.RiskCritical, func(in riskInput) bool {
				return containsAny(in.query, emergency)
			}},
			{"escalation_response", entities.RiskCritical, func(in riskInput) bool {
				return containsAny(in.response, escalation)
			}},
			{"severe_response_or_high_risk_medication", entities.RiskHigh, func(in riskInput) bool {
				if containsAny(in.response, severe) {
					return true
				}
				return slices.ContainsFunc(in.medications, func(med string) bool {
					return slices.Contains(highRisk, med)
				})
			}},
			{"sensitive_population", entities.RiskHigh, func(in riskInput) bool {
				return containsAny(in.query, sensitive)
			}},
			{"moderate_response_or_polypharmacy", entities.RiskMedium, func(in riskInput) bool {
				return containsAny(in.response, moderate) || len(in.medications) >= 2
			}},
		},
	}
}

// Classify returns the risk level for a query, the response text shown to
// the user and the mentioned medications. It never fails.
func (c *RiskClassifier) Classify(query, response string, medications []string) entities.RiskAssessment {
	assessment, _ := c.Explain(query, response, medications)
	return assessment
}

// Explain is Classify plus the name of the rule that fired, "default" when none did.
func (c *RiskClassifier) Explain(query, response string, medications []string) (entities.RiskAssessment, string) {
	level, rule := c.evaluate(query, response, medications)
	return entities.RiskAssessment{
		Level:                level,
		RequiresConsultation: c.requiresConsultation(level, response),
	}, rule
}

func (c *RiskClassifier) evaluate(query, response string, medications []string) (entities.RiskLevel, string) {
	in := riskInput{
		query:       strings.ToLower(query),
		response:    strings.ToLower(response),
		medications: lowerAll(medications),
	}
	for _, rule := range c.rules {
		if rule.match(in) {
			return rule.level, rule.name
		}
	}
	return entities.RiskLow, "default"
}

func (c *RiskClassifier) requiresConsultation(level entities.RiskLevel, response string) bool {
	if level == entities.RiskHigh || level == entities.RiskCritical {
		return true
	}
	return containsAny(strings.ToLower(response), c.referral)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
