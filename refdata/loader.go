// Package refdata loads the medication catalogue and the interaction table
// from JSON, either the embedded default dataset, a local file or a URL.
package refdata

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"golang.org/x/text/encoding/charmap"
)

// Compile-time check to ensure Loader implements the Loader interface
var _ interfaces.Loader = (*Loader)(nil)

//go:embed medications.json
var embeddedDataset []byte

// maxDatasetSize caps downloads and files at 32MB
const maxDatasetSize = 32 << 20

// Loader reads a dataset from its configured source.
type Loader struct {
	source string
	client *http.Client
}

// NewLoader creates a loader. An empty source selects the embedded dataset.
func NewLoader(source string) *Loader {
	return &Loader{
		source: source,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Source names where the data comes from, for logs and health reports.
func (l *Loader) Source() string {
	if l.source == "" {
		return "embedded"
	}
	return l.source
}

// Load reads and decodes the dataset.
func (l *Loader) Load(ctx context.Context) (*entities.Dataset, error) {
	raw, err := l.read(ctx)
	if err != nil {
		return nil, err
	}

	ds, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset from %s: %w", l.Source(), err)
	}

	logging.Info("Reference data loaded",
		"source", l.Source(),
		"medications", len(ds.Medications),
		"interactions", len(ds.Interactions))
	return ds, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if l.source == "" {
		return embeddedDataset, nil
	}
	if config.IsRemoteSource(l.source) {
		return l.download(ctx)
	}

	cleanPath := filepath.Clean(l.source)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset %s: %w", cleanPath, err)
	}
	if info.Size() > maxDatasetSize {
		return nil, fmt.Errorf("dataset %s is too large: %d bytes", cleanPath, info.Size())
	}
	// #nosec G304 -- path comes from operator configuration
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", cleanPath, err)
	}
	return raw, nil
}

func (l *Loader) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", l.source, err)
	}

	response, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", l.source, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: unexpected status %d", l.source, response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxDatasetSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxDatasetSize {
		return nil, fmt.Errorf("dataset at %s exceeds %d bytes", l.source, maxDatasetSize)
	}

	logging.Debug("Dataset downloaded", "source", l.source, "bytes", len(body))
	return body, nil
}

// toUTF8 passes UTF-8 through and decodes anything else as ISO-8859-1,
// which is what spreadsheet exports of the catalogue tend to produce.
func toUTF8(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return raw, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ISO-8859-1 content: %w", err)
	}
	return decoded, nil
}

// Decode parses a JSON dataset. Invalid medications are skipped with a
// warning; an invalid interaction fails the whole load.
func Decode(raw []byte) (*entities.Dataset, error) {
	content, err := toUTF8(raw)
	if err != nil {
		return nil, err
	}

	var ds entities.Dataset
	if err := json.Unmarshal(content, &ds); err != nil {
		return nil, fmt.Errorf("invalid dataset JSON: %w", err)
	}

	medications := make([]entities.Medication, 0, len(ds.Medications))
	seenIDs := make(map[string]bool, len(ds.Medications))
	for i, med := range ds.Medications {
		med = normalizeMedication(med)
		if err := validateMedication(med); err != nil {
			logging.Warn("Skipping invalid medication", "error", err, "index", i)
			continue
		}
		if seenIDs[med.ID] {
			logging.Warn("Skipping duplicate medication", "id", med.ID, "index", i)
			continue
		}
		seenIDs[med.ID] = true
		medications = append(medications, med)
	}
	if len(medications) == 0 {
		return nil, fmt.Errorf("dataset contains no valid medications")
	}

	interactions := make([]entities.Interaction, 0, len(ds.Interactions))
	for i, in := range ds.Interactions {
		in, err := normalizeInteraction(in)
		if err != nil {
			return nil, fmt.Errorf("interaction %d: %w", i, err)
		}
		interactions = append(interactions, in)
	}

	return &entities.Dataset{Medications: medications, Interactions: interactions}, nil
}

func normalizeMedication(m entities.Medication) entities.Medication {
	m.ID = strings.TrimSpace(m.ID)
	m.GenericName = entities.NormalizeName(m.GenericName)
	m.DosageForm = strings.ToLower(strings.TrimSpace(m.DosageForm))
	m.BrandNames = compact(m.BrandNames)
	m.Indications = compact(m.Indications)
	m.Warnings = compact(m.Warnings)
	return m
}

func validateMedication(m entities.Medication) error {
	if m.ID == "" {
		return fmt.Errorf("missing id")
	}
	if m.GenericName == "" {
		return fmt.Errorf("missing generic name for id %s", m.ID)
	}
	if m.DosageForm == "" {
		return fmt.Errorf("missing dosage form for %s", m.GenericName)
	}
	return nil
}

func normalizeInteraction(in entities.Interaction) (entities.Interaction, error) {
	a := entities.NormalizeName(in.Medications[0])
	b := entities.NormalizeName(in.Medications[1])
	if a == "" || b == "" {
		return in, fmt.Errorf("pair needs two medication names, got %q and %q", in.Medications[0], in.Medications[1])
	}
	if a == b {
		return in, fmt.Errorf("pair %q references the same medication twice", a)
	}

	severity, err := entities.ParseSeverity(string(in.Severity))
	if err != nil {
		return in, fmt.Errorf("%s + %s: %w", a, b, err)
	}

	in.Medications = [2]string{a, b}
	in.Severity = severity
	in.Description = strings.TrimSpace(in.Description)
	in.Recommendation = strings.TrimSpace(in.Recommendation)
	return in, nil
}

// compact trims entries, drops blanks and never returns nil
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
