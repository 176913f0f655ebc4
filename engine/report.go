package engine

import (
	"fmt"
	"strings"

	"github.com/cogitto/cogitto-api/entities"
)

// InteractionLookup resolves an unordered medication pair.
type InteractionLookup interface {
	LookupInteraction(a, b string) (entities.Interaction, bool)
}

// BuildReport checks every unordered pair of medications, in input order,
// against lookup. Fewer than two medications always yield an empty report.
func BuildReport(medications []string, lookup InteractionLookup) entities.InteractionReport {
	report := entities.InteractionReport{
		Warnings: []string{},
		Details:  []entities.InteractionDetail{},
	}
	if lookup == nil || len(medications) < 2 {
		return report
	}

	for i := 0; i < len(medications); i++ {
		for j := i + 1; j < len(medications); j++ {
			a, b := medications[i], medications[j]
			in, ok := lookup.LookupInteraction(a, b)
			if !ok {
				continue
			}
			report.Warnings = append(report.Warnings, FormatWarning(in.Severity, a, b))
			report.Details = append(report.Details, entities.InteractionDetail{
				Medications:    [2]string{a, b},
				Severity:       in.Severity,
				Description:    in.Description,
				Recommendation: in.Recommendation,
			})
		}
	}
	return report
}

// FormatWarning renders "MAJOR: warfarin + ibuprofen".
func FormatWarning(severity entities.Severity, a, b string) string {
	return fmt.Sprintf("%s: %s + %s", strings.ToUpper(string(severity)), a, b)
}
