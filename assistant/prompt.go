package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
)

// UserContext is what the session knows about the person asking.
type UserContext struct {
	CurrentMedications []string `json:"current_medications"`
	Allergies          []string `json:"allergies"`
	SessionQueries     int      `json:"session_queries"`
}

// medicationContext is the per-drug block embedded in the system prompt
type medicationContext struct {
	BrandNames           []string `json:"brand_names"`
	Uses                 []string `json:"uses"`
	Warnings             []string `json:"warnings"`
	PrescriptionRequired bool     `json:"prescription_required"`
	DosageForm           string   `json:"dosage_form"`
	Strength             string   `json:"strength"`
}

// BuildPrompt assembles the system prompt from the query, the catalogue
// records of the mentioned medications, the interaction report and the
// user context. The user message is the raw query.
func BuildPrompt(query string, mentioned []entities.Medication, report entities.InteractionReport, user *UserContext) interfaces.Prompt {
	medsBlock := "No specific medications in our database"
	if len(mentioned) > 0 {
		ctx := make(map[string]medicationContext, len(mentioned))
		for _, med := range mentioned {
			ctx[med.GenericName] = medicationContext{
				BrandNames:           med.BrandNames,
				Uses:                 med.Indications,
				Warnings:             med.Warnings,
				PrescriptionRequired: med.PrescriptionRequired,
				DosageForm:           med.DosageForm,
				Strength:             med.Strength,
			}
		}
		medsBlock = indentJSON(ctx)
	}

	interactionsBlock := "No known interactions in our database"
	if !report.Empty() {
		interactionsBlock = indentJSON(report)
	}

	userBlock := "No additional context provided"
	if user != nil {
		userBlock = indentJSON(user)
	}

	var b strings.Builder
	b.WriteString("You are Cogitto, an advanced AI medication assistant. You provide accurate, helpful, and safe medication information.\n\n")
	b.WriteString(`CORE PRINCIPLES:
1. Patient safety is the absolute priority
2. Provide evidence-based information
3. Always recommend consulting healthcare providers for medical decisions
4. Be clear about limitations and when professional help is needed
5. Use clear, empathetic communication

`)
	fmt.Fprintf(&b, "CURRENT USER QUERY: %q\n\n", query)
	fmt.Fprintf(&b, "COGITTO'S MEDICATION DATABASE FOR MENTIONED DRUGS:\n%s\n\n", medsBlock)
	fmt.Fprintf(&b, "INTERACTION ANALYSIS:\n%s\n\n", interactionsBlock)
	fmt.Fprintf(&b, "USER CONTEXT:\n%s\n\n", userBlock)
	b.WriteString(`RESPONSE GUIDELINES:
1. Use the medication database above for accurate information
2. Include interaction warnings if found in the analysis above
3. Always include appropriate safety disclaimers
4. Recommend consulting healthcare providers for personalized advice
5. Use clear formatting with sections and bullet points
6. If emergency keywords detected, prioritize immediate care instructions

SAFETY PROTOCOLS:
- Emergency situations: Recommend calling 911/poison control immediately
- High-risk medications: Emphasize professional consultation
- Drug interactions: Clearly state severity and recommendations
- Pregnancy/breastfeeding: Require immediate healthcare provider consultation

Format your response clearly with sections like:
**Medication Information:**
**Safety Considerations:**
**Recommendations:**
**When to Seek Help:**`)

	return interfaces.Prompt{System: b.String(), User: query}
}

// indentJSON never fails for the plain structs used here
func indentJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
