package entities

import (
	"fmt"
	"strings"
)

// Severity ranks a known interaction between two medications.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// ParseSeverity accepts the three known severities, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityMinor:
		return SeverityMinor, nil
	case SeverityModerate:
		return SeverityModerate, nil
	case SeverityMajor:
		return SeverityMajor, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Rank orders severities: minor < moderate < major. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeverityMajor:
		return 3
	}
	return 0
}

// Interaction is a registered interaction between two canonical medication names.
type Interaction struct {
	Medications    [2]string `json:"medications"`
	Severity       Severity  `json:"severity"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
}

// PairKey identifies an unordered pair of medication names.
// Both halves are normalized and sorted so (a, b) and (b, a) hash the same.
type PairKey struct {
	First  string
	Second string
}

// NewPairKey builds the key for an unordered pair
func NewPairKey(a, b string) PairKey {
	a = NormalizeName(a)
	b = NormalizeName(b)
	if b < a {
		a, b = b, a
	}
	return PairKey{First: a, Second: b}
}

// NormalizeName lower-cases and trims a medication name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// InteractionTable is a read-only symmetric lookup of interactions.
type InteractionTable struct {
	entries map[PairKey]Interaction
}

// NewInteractionTable indexes the given interactions by unordered pair.
// A later entry for the same pair replaces an earlier one.
func NewInteractionTable(interactions []Interaction) *InteractionTable {
	t := &InteractionTable{entries: make(map[PairKey]Interaction, len(interactions))}
	for _, in := range interactions {
		key := NewPairKey(in.Medications[0], in.Medications[1])
		if key.First == "" || key.First == key.Second {
			continue
		}
		t.entries[key] = in
	}
	return t
}

// Lookup returns the interaction registered for the pair, in either order.
func (t *InteractionTable) Lookup(a, b string) (Interaction, bool) {
	if t == nil {
		return Interaction{}, false
	}
	key := NewPairKey(a, b)
	if key.First == "" || key.First == key.Second {
		return Interaction{}, false
	}
	in, ok := t.entries[key]
	return in, ok
}

// Len returns the number of registered pairs.
func (t *InteractionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// All returns every registered interaction, in no particular order.
func (t *InteractionTable) All() []Interaction {
	if t == nil {
		return nil
	}
	out := make([]Interaction, 0, len(t.entries))
	for _, in := range t.entries {
		out = append(out, in)
	}
	return out
}

// InteractionDetail is an interaction matched in a query, annotated with the
// two names in the order they were found.
type InteractionDetail struct {
	Medications    [2]string `json:"medications"`
	Severity       Severity  `json:"severity"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
}

// InteractionReport is the result of checking every pair of mentioned medications.
type InteractionReport struct {
	Warnings []string            `json:"warnings"`
	Details  []InteractionDetail `json:"details"`
}

// Empty reports whether no interaction was found.
func (r InteractionReport) Empty() bool {
	return len(r.Details) == 0
}
