package assistant

import (
	"fmt"
	"strings"

	"github.com/cogitto/cogitto-api/entities"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxWarningsPerMedication bounds the safety notes appended per drug
const maxWarningsPerMedication = 3

// InteractionAlerts renders the interaction section appended to every answer.
// It is empty when the report is.
func InteractionAlerts(report entities.InteractionReport) string {
	if report.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n**COGITTO INTERACTION ALERTS:**\n")
	for _, d := range report.Details {
		fmt.Fprintf(&b, "\n**%s**: %s + %s\n", strings.ToUpper(string(d.Severity)), d.Medications[0], d.Medications[1])
		fmt.Fprintf(&b, "**Issue**: %s\n", d.Description)
		fmt.Fprintf(&b, "**Recommendation**: %s\n", d.Recommendation)
	}
	return b.String()
}

// SafetyNotes lists the first warnings of each mentioned medication.
func SafetyNotes(medications []entities.Medication) string {
	title := cases.Title(language.English)

	var b strings.Builder
	for _, med := range medications {
		if len(med.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n**%s Safety Information**:\n", title.String(med.GenericName))
		for i, warning := range med.Warnings {
			if i == maxWarningsPerMedication {
				break
			}
			fmt.Fprintf(&b, "• %s\n", warning)
		}
	}
	return b.String()
}
