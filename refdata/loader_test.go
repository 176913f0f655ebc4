package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/logging"
)

func init() {
	logging.InitLogger(logging.Options{Env: config.EnvTest})
}

const smallDataset = `{
  "medications": [
    {"id": "1", "generic_name": " Warfarin ", "brand_names": ["Coumadin", " "], "dosage_form": "Tablet", "prescription_required": true},
    {"id": "2", "generic_name": "ibuprofen", "brand_names": ["Advil"], "dosage_form": "tablet"}
  ],
  "interactions": [
    {"medications": ["Warfarin", "IBUPROFEN"], "severity": "Major", "description": " bleeding ", "recommendation": "avoid"}
  ]
}`

func TestLoadEmbeddedDataset(t *testing.T) {
	loader := NewLoader("")
	if loader.Source() != "embedded" {
		t.Errorf("Expected embedded source, got %s", loader.Source())
	}

	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(ds.Medications) != 7 {
		t.Errorf("Expected 7 medications, got %d", len(ds.Medications))
	}
	if len(ds.Interactions) != 4 {
		t.Errorf("Expected 4 interactions, got %d", len(ds.Interactions))
	}

	table := entities.NewInteractionTable(ds.Interactions)
	in, ok := table.Lookup("ibuprofen", "warfarin")
	if !ok {
		t.Fatal("Expected warfarin + ibuprofen interaction in the default dataset")
	}
	if in.Severity != entities.SeverityMajor {
		t.Errorf("Expected major severity, got %s", in.Severity)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte(smallDataset), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	warfarin := ds.Medications[0]
	if warfarin.GenericName != "warfarin" {
		t.Errorf("Expected normalized generic name, got %q", warfarin.GenericName)
	}
	if warfarin.DosageForm != "tablet" {
		t.Errorf("Expected lower-cased dosage form, got %q", warfarin.DosageForm)
	}
	if len(warfarin.BrandNames) != 1 {
		t.Errorf("Expected blank brand name dropped, got %v", warfarin.BrandNames)
	}
	if ds.Medications[1].Warnings == nil {
		t.Error("Expected empty warnings slice, got nil")
	}

	in := ds.Interactions[0]
	if in.Medications != [2]string{"warfarin", "ibuprofen"} {
		t.Errorf("Unexpected pair %v", in.Medications)
	}
	if in.Severity != entities.SeverityMajor || in.Description != "bleeding" {
		t.Errorf("Unexpected interaction %+v", in)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dataset.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(smallDataset))
	}))
	defer server.Close()

	ds, err := NewLoader(server.URL + "/dataset.json").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Medications) != 2 {
		t.Errorf("Expected 2 medications, got %d", len(ds.Medications))
	}

	_, err = NewLoader(server.URL + "/other.json").Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unexpected status 404") {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestDecodeISO88591(t *testing.T) {
	raw := []byte("{\"medications\":[{\"id\":\"1\",\"generic_name\":\"parac\xe9tamol\",\"dosage_form\":\"comprim\xe9\"}]}")

	ds, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ds.Medications[0].GenericName != "paracétamol" {
		t.Errorf("Expected paracétamol, got %q", ds.Medications[0].GenericName)
	}
	if ds.Medications[0].DosageForm != "comprimé" {
		t.Errorf("Expected comprimé, got %q", ds.Medications[0].DosageForm)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"invalid json", `{"medications": [`, "invalid dataset JSON"},
		{"no medications", `{"medications": []}`, "no valid medications"},
		{"only invalid medications", `{"medications": [{"id": "", "generic_name": "x"}]}`, "no valid medications"},
		{
			"unknown severity",
			`{"medications": [{"id": "1", "generic_name": "a", "dosage_form": "tablet"}],
			  "interactions": [{"medications": ["a", "b"], "severity": "severe"}]}`,
			"unknown severity",
		},
		{
			"self pair",
			`{"medications": [{"id": "1", "generic_name": "a", "dosage_form": "tablet"}],
			  "interactions": [{"medications": ["a", "A"], "severity": "minor"}]}`,
			"same medication twice",
		},
		{
			"single name",
			`{"medications": [{"id": "1", "generic_name": "a", "dosage_form": "tablet"}],
			  "interactions": [{"medications": ["a"], "severity": "minor"}]}`,
			"needs two medication names",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeSkipsDuplicateIDs(t *testing.T) {
	raw := `{"medications": [
		{"id": "1", "generic_name": "a", "dosage_form": "tablet"},
		{"id": "1", "generic_name": "b", "dosage_form": "tablet"}
	]}`

	ds, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(ds.Medications) != 1 || ds.Medications[0].GenericName != "a" {
		t.Errorf("Expected first record kept, got %+v", ds.Medications)
	}
}
