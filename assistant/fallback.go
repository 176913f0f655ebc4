package assistant

import (
	"fmt"
	"strings"

	"github.com/cogitto/cogitto-api/entities"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const fallbackNote = "\n\n**Note**: Using Cogitto's built-in knowledge base (text generation temporarily unavailable)."

var (
	interactionKeywords = []string{"interact", "together", "with", "and"}
	dosageKeywords      = []string{"dosage", "dose", "how much"}
	sideEffectKeywords  = []string{"side effect", "adverse", "reaction"}
	emergencyKeywords   = []string{"emergency", "overdose", "poisoning"}
)

// FallbackResponse builds a deterministic answer from local data only. The
// first matching branch wins: interaction question, single medication
// profile, dosage, side effects, emergency, then a generic help text.
func FallbackResponse(query string, medications []string, catalogue Catalogue) string {
	q := strings.ToLower(query)

	switch {
	case len(medications) >= 2 && containsAny(q, interactionKeywords):
		return interactionAnswer(medications[0], medications[1], catalogue)

	case len(medications) == 1:
		return profileAnswer(medications[0], catalogue)

	case containsAny(q, dosageKeywords):
		return "Dosage recommendations depend on many individual factors including your age, weight, medical conditions, and other medications. I cannot provide specific dosing advice.\n\n" +
			"**Please consult**:\n• Your prescribing healthcare provider\n• Your pharmacist\n• The medication package insert"

	case containsAny(q, sideEffectKeywords):
		if len(medications) > 0 {
			return fmt.Sprintf("Side effects can vary from person to person. For %s, please:\n\n"+
				"• Check the medication package insert\n• Consult your pharmacist\n"+
				"• Contact your healthcare provider if you experience concerning symptoms\n\n"+
				"Always report serious side effects to your healthcare team.", medications[0])
		}
		return "I can help you understand side effects for specific medications. Which medication are you asking about?"

	case containsAny(q, emergencyKeywords):
		return "**MEDICAL EMERGENCY**\n\nIf this is a medical emergency involving overdose or poisoning:\n\n" +
			"**CALL IMMEDIATELY**:\n• 911 (Emergency)\n• Poison Control: 1-800-222-1222\n\n" +
			"Do not delay seeking immediate medical attention."

	default:
		return "I'm Cogitto, your medication assistant. I can help with:\n\n" +
			"• Drug interaction checking\n• General medication information\n• Side effect information\n• Safety warnings\n\n" +
			"What specific medication question can I help you with today? You can ask things like:\n" +
			"• 'Can I take ibuprofen with warfarin?'\n• 'Tell me about acetaminophen'\n• 'What are the side effects of lisinopril?'"
	}
}

func interactionAnswer(a, b string, catalogue Catalogue) string {
	in, ok := catalogue.LookupInteraction(a, b)
	if !ok {
		return fmt.Sprintf("**No Major Interactions Found**\n\nI don't have any major interaction warnings for %s and %s in my current database.\n\n"+
			"**Important**: Always consult your pharmacist when starting new medications.", a, b)
	}

	switch in.Severity {
	case entities.SeverityMajor:
		return fmt.Sprintf("**MAJOR INTERACTION FOUND**\n\nThere is a significant interaction between %s and %s. %s.\n\n"+
			"**Recommendation**: %s\n\nPlease consult your healthcare provider immediately.", a, b, in.Description, in.Recommendation)
	case entities.SeverityModerate:
		return fmt.Sprintf("**Moderate Interaction**\n\nThere is a moderate interaction between %s and %s. %s.\n\n"+
			"**Recommendation**: %s", a, b, in.Description, in.Recommendation)
	default:
		return fmt.Sprintf("**Minor Interaction**\n\nThere is a minor interaction between %s and %s. %s", a, b, in.Description)
	}
}

func profileAnswer(name string, catalogue Catalogue) string {
	med, ok := catalogue.FindByName(name)
	if !ok {
		return fmt.Sprintf("I don't have detailed information about %s in my current database. "+
			"For comprehensive medication information, please consult your pharmacist.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s Information:**\n\n", cases.Title(language.English).String(med.GenericName))
	fmt.Fprintf(&b, "**Brand Names**: %s\n\n", strings.Join(med.BrandNames, ", "))
	fmt.Fprintf(&b, "**Form**: %s (%s)\n\n", med.DosageForm, med.Strength)
	fmt.Fprintf(&b, "**Uses**: %s\n\n", strings.Join(med.Indications, ", "))
	b.WriteString("**Important Warnings**:\n")
	for _, warning := range med.Warnings {
		fmt.Fprintf(&b, "• %s\n", warning)
	}
	prescription := "No (Over-the-counter)"
	if med.PrescriptionRequired {
		prescription = "Yes"
	}
	fmt.Fprintf(&b, "\n**Prescription Required**: %s", prescription)
	return b.String()
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
