// Package validation provides data and input validation for the Cogitto API.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
)

// ErrInvalidInput marks caller-supplied input that was rejected.
// Handlers map it to 400 with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

const (
	MinSearchLength     = 2
	MaxSearchLength     = 100
	MaxChatMessageRunes = 2000
	MaxMedicationsInput = 20
	maxNameLength       = 100
	maxIDLength         = 64
)

// Pre-compiled regex patterns, compiled once at package initialization
var (
	// Letters in any script, digits, spaces and safe punctuation
	inputRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9\s\-\.\+'/(),]+$`)
	idRegex    = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

	// Substring checks are cheaper than a regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "eval(", "expression(", "@import",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "xp_", "exec(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}

	// Chat messages are free prose, so only markup and script payloads are refused
	chatDangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "<iframe", "onload=", "onerror=",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ValidateMedication checks a single catalogue record
func (v *DataValidatorImpl) ValidateMedication(m *entities.Medication) error {
	if m == nil {
		return fmt.Errorf("medication is nil")
	}

	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("empty id for medication %q", m.GenericName)
	}

	if strings.TrimSpace(m.GenericName) == "" {
		return fmt.Errorf("empty generic name for id %s", m.ID)
	}

	if len(m.GenericName) > maxNameLength {
		return fmt.Errorf("generic name too long for id %s: %d characters", m.ID, len(m.GenericName))
	}

	for _, brand := range m.BrandNames {
		if strings.TrimSpace(brand) == "" {
			return fmt.Errorf("empty brand name for id %s", m.ID)
		}
		if len(brand) > maxNameLength {
			return fmt.Errorf("brand name too long for id %s: %d characters", m.ID, len(brand))
		}
	}

	if len(m.DosageForm) > 50 {
		return fmt.Errorf("dosage form too long for id %s: %d characters", m.ID, len(m.DosageForm))
	}

	return nil
}

// ValidateDataIntegrity checks the dataset as a whole before it is published
func (v *DataValidatorImpl) ValidateDataIntegrity(ds *entities.Dataset) error {
	if ds == nil || len(ds.Medications) == 0 {
		return fmt.Errorf("no medications found")
	}

	ids := make(map[string]bool, len(ds.Medications))
	names := make(map[string]string, len(ds.Medications))
	for i := range ds.Medications {
		med := &ds.Medications[i]
		if err := v.ValidateMedication(med); err != nil {
			return fmt.Errorf("invalid medication %s: %w", med.ID, err)
		}

		if ids[med.ID] {
			return fmt.Errorf("duplicate medication id found: %s", med.ID)
		}
		ids[med.ID] = true

		// A name shared by two records would make mention extraction ambiguous
		for _, name := range med.Names() {
			key := entities.FoldName(name)
			if owner, ok := names[key]; ok && owner != med.ID {
				return fmt.Errorf("name %q is used by medications %s and %s", name, owner, med.ID)
			}
			names[key] = med.ID
		}
	}

	for _, in := range ds.Interactions {
		if _, err := entities.ParseSeverity(string(in.Severity)); err != nil {
			return fmt.Errorf("interaction %s + %s: %w", in.Medications[0], in.Medications[1], err)
		}
		for _, name := range in.Medications {
			if _, ok := names[entities.FoldName(name)]; !ok {
				return fmt.Errorf("interaction %s + %s references unknown medication %q",
					in.Medications[0], in.Medications[1], name)
			}
		}
	}

	return nil
}

// ReportDataQuality lists non-fatal issues worth logging after a load
func (v *DataValidatorImpl) ReportDataQuality(ds *entities.Dataset) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateIDs:            []string{},
		DuplicateNames:          []string{},
		UnknownInteractionPairs: []string{},
	}
	if ds == nil {
		return report
	}

	ids := make(map[string]bool)
	names := make(map[string]bool)
	for _, med := range ds.Medications {
		if ids[med.ID] {
			report.DuplicateIDs = append(report.DuplicateIDs, med.ID)
		}
		ids[med.ID] = true

		key := entities.FoldName(med.GenericName)
		if names[key] {
			report.DuplicateNames = append(report.DuplicateNames, med.GenericName)
		}
		names[key] = true
		for _, brand := range med.BrandNames {
			names[entities.FoldName(brand)] = true
		}

		if len(med.Warnings) == 0 {
			report.MedicationsWithoutWarnings++
		}
		if len(med.Indications) == 0 {
			report.MedicationsWithoutIndications++
		}
		if len(med.BrandNames) == 0 {
			report.MedicationsWithoutBrands++
		}
	}

	for _, in := range ds.Interactions {
		if !names[entities.FoldName(in.Medications[0])] || !names[entities.FoldName(in.Medications[1])] {
			report.UnknownInteractionPairs = append(report.UnknownInteractionPairs,
				in.Medications[0]+" + "+in.Medications[1])
		}
	}

	if len(report.DuplicateIDs) > 0 || len(report.UnknownInteractionPairs) > 0 {
		logging.Warn("Data quality issues detected",
			"duplicate_ids", report.DuplicateIDs,
			"unknown_interaction_pairs", report.UnknownInteractionPairs,
		)
	}

	return report
}

// ValidateInput validates short free-text input such as search terms
func (v *DataValidatorImpl) ValidateInput(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return invalid("input cannot be empty")
	}

	if utf8.RuneCountInString(trimmed) < MinSearchLength {
		return invalid("input too short: minimum %d characters", MinSearchLength)
	}

	if len(trimmed) > MaxSearchLength {
		return invalid("input too long: maximum %d characters", MaxSearchLength)
	}

	// Word count validation to prevent DoS attacks with many short words
	if len(strings.Fields(trimmed)) > 6 {
		return invalid("search query too complex: maximum 6 words allowed")
	}

	lowerInput := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return invalid("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(trimmed) {
		return invalid("input contains invalid characters. Only letters, numbers, spaces and basic punctuation are allowed")
	}

	if hasExcessiveRepetition(trimmed) {
		return invalid("input contains excessive character repetition")
	}

	return nil
}

// ValidateSearchQuery validates and trims a catalogue search query
func (v *DataValidatorImpl) ValidateSearchQuery(query string) (string, error) {
	if err := v.ValidateInput(query); err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}

// ValidateMedicationName validates a single medication name given by a caller
func (v *DataValidatorImpl) ValidateMedicationName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", invalid("medication name cannot be empty")
	}
	if len(trimmed) > maxNameLength {
		return "", invalid("medication name too long: maximum %d characters", maxNameLength)
	}
	if !inputRegex.MatchString(trimmed) {
		return "", invalid("medication name contains invalid characters")
	}
	return trimmed, nil
}

// ValidateMedicationID validates a catalogue identifier
func (v *DataValidatorImpl) ValidateMedicationID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", invalid("medication id cannot be empty")
	}

	// Reject if original input contained whitespace
	if len(id) != len(trimmed) {
		return "", invalid("medication id contains invalid characters")
	}

	if len(trimmed) > maxIDLength {
		return "", invalid("medication id too long: maximum %d characters", maxIDLength)
	}

	if !idRegex.MatchString(trimmed) {
		return "", invalid("medication id contains invalid characters")
	}

	return trimmed, nil
}

// ValidateChatMessage validates a chat message and returns it trimmed
func (v *DataValidatorImpl) ValidateChatMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", invalid("message cannot be empty")
	}

	if utf8.RuneCountInString(trimmed) > MaxChatMessageRunes {
		return "", invalid("message too long: maximum %d characters", MaxChatMessageRunes)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range chatDangerousPatterns {
		if strings.Contains(lower, pattern) {
			return "", invalid("message contains potentially dangerous content")
		}
	}

	return trimmed, nil
}

// hasExcessiveRepetition checks for the same byte repeated more than 10 times
func hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
