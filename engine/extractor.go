// Package engine holds the interaction-lookup and risk-assessment logic:
// mention extraction, interaction reports, risk classification, disclaimers
// and per-medication insights. Everything here is pure and safe for
// concurrent use.
package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cogitto/cogitto-api/entities"
)

// MatchMode selects how catalogue names are located in free text.
type MatchMode string

const (
	// MatchSubstring finds a name anywhere, so "warfarinol" mentions warfarin.
	MatchSubstring MatchMode = "substring"
	// MatchWord requires the name to start and end on a word boundary.
	MatchWord MatchMode = "word"
)

// ParseMatchMode defaults to substring matching for unknown values.
func ParseMatchMode(s string) MatchMode {
	if MatchMode(strings.ToLower(strings.TrimSpace(s))) == MatchWord {
		return MatchWord
	}
	return MatchSubstring
}

// MentionExtractor finds catalogue medications named in free text.
type MentionExtractor struct {
	mode MatchMode
}

// NewMentionExtractor creates an extractor using the given match mode.
func NewMentionExtractor(mode MatchMode) *MentionExtractor {
	return &MentionExtractor{mode: mode}
}

// Extract returns the canonical names of every catalogue medication whose
// generic name or any brand alias occurs in text. Each medication appears at
// most once, in catalogue order. Comparison ignores case and accents.
func (e *MentionExtractor) Extract(text string, catalogue []entities.Medication) []string {
	found := make([]string, 0)
	haystack := entities.FoldName(text)
	if haystack == "" {
		return found
	}

	seen := make(map[string]bool)
	for _, med := range catalogue {
		canonical := entities.NormalizeName(med.GenericName)
		if canonical == "" || seen[canonical] {
			continue
		}
		for _, name := range med.Names() {
			if e.contains(haystack, entities.FoldName(name)) {
				seen[canonical] = true
				found = append(found, canonical)
				break
			}
		}
	}
	return found
}

func (e *MentionExtractor) contains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	if e.mode != MatchWord {
		return strings.Contains(haystack, needle)
	}

	for offset := 0; ; {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if isBoundaryBefore(haystack, start) && isBoundaryAfter(haystack, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[start:])
		offset = start + size
	}
}

func isBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func isBoundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
