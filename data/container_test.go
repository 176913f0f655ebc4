package data

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/validation"
)

func init() {
	logging.InitLogger(logging.Options{Env: config.EnvTest})
}

func testDataset() *entities.Dataset {
	return &entities.Dataset{
		Medications: []entities.Medication{
			{ID: "1", GenericName: "acetaminophen", BrandNames: []string{"Tylenol", "Panadol"}, DosageForm: "tablet"},
			{ID: "2", GenericName: "ibuprofen", BrandNames: []string{"Advil", "Motrin"}, DosageForm: "tablet"},
			{ID: "6", GenericName: "omeprazole", BrandNames: []string{"Prilosec"}, DosageForm: "capsule"},
			{ID: "7", GenericName: "warfarin", BrandNames: []string{"Coumadin"}, DosageForm: "tablet", PrescriptionRequired: true},
		},
		Interactions: []entities.Interaction{
			{Medications: [2]string{"warfarin", "ibuprofen"}, Severity: entities.SeverityMajor, Description: "bleeding"},
			{Medications: [2]string{"warfarin", "acetaminophen"}, Severity: entities.SeverityModerate},
		},
	}
}

func TestNewDataContainer(t *testing.T) {
	dc := NewDataContainer()

	if dc == nil {
		t.Fatal("NewDataContainer returned nil")
	}

	if dc.IsUpdating() {
		t.Error("NewDataContainer should not be updating")
	}

	if !dc.GetLastUpdated().IsZero() {
		t.Error("NewDataContainer should have zero lastUpdated time")
	}

	if len(dc.GetMedications()) != 0 {
		t.Error("NewDataContainer should have empty medications")
	}

	if len(dc.GetMedicationsMap()) != 0 {
		t.Error("NewDataContainer should have empty medications map")
	}

	if dc.GetInteractionCount() != 0 {
		t.Error("NewDataContainer should have no interactions")
	}

	if _, ok := dc.LookupInteraction("warfarin", "ibuprofen"); ok {
		t.Error("NewDataContainer should not find interactions")
	}
}

func TestUpdateData(t *testing.T) {
	dc := NewDataContainer()
	before := time.Now()

	dc.UpdateData(testDataset())

	if len(dc.GetMedications()) != 4 {
		t.Errorf("Expected 4 medications, got %d", len(dc.GetMedications()))
	}
	if dc.GetMedications()[0].GenericName != "acetaminophen" {
		t.Error("Expected load order to be preserved")
	}
	if dc.GetInteractionCount() != 2 {
		t.Errorf("Expected 2 interactions, got %d", dc.GetInteractionCount())
	}
	if dc.GetLastUpdated().Before(before) {
		t.Error("Expected lastUpdated to be refreshed")
	}

	dc.UpdateData(nil)
	if len(dc.GetMedications()) != 0 {
		t.Error("Expected nil dataset to clear the catalogue")
	}
}

func TestFindByIDAndName(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testDataset())

	med, ok := dc.FindByID("7")
	if !ok || med.GenericName != "warfarin" {
		t.Errorf("FindByID(7) = %+v, %v", med, ok)
	}
	if _, ok := dc.FindByID("99"); ok {
		t.Error("Expected miss for unknown id")
	}

	tests := map[string]string{
		"warfarin":  "warfarin",
		"COUMADIN":  "warfarin",
		" advil ":   "ibuprofen",
		"Tylénol":   "acetaminophen",
		"prilosec":  "omeprazole",
	}
	for name, want := range tests {
		med, ok := dc.FindByName(name)
		if !ok || med.GenericName != want {
			t.Errorf("FindByName(%q) = %q, %v; want %q", name, med.GenericName, ok, want)
		}
	}
	if _, ok := dc.FindByName("aspirin"); ok {
		t.Error("Expected miss for unknown name")
	}
}

func TestSearch(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testDataset())

	tests := []struct {
		query string
		want  []string
	}{
		{"war", []string{"warfarin"}},
		{"ADV", []string{"ibuprofen"}},
		{"ol", []string{"acetaminophen", "omeprazole"}},
		{"  pan ", []string{"acetaminophen"}},
		{"zz", []string{}},
	}

	for _, tt := range tests {
		results, err := dc.Search(tt.query)
		if err != nil {
			t.Errorf("Search(%q) unexpected error %v", tt.query, err)
			continue
		}
		if len(results) != len(tt.want) {
			t.Errorf("Search(%q) returned %d results, want %d", tt.query, len(results), len(tt.want))
			continue
		}
		for i, med := range results {
			if med.GenericName != tt.want[i] {
				t.Errorf("Search(%q)[%d] = %s, want %s", tt.query, i, med.GenericName, tt.want[i])
			}
		}
	}

	for _, bad := range []string{"", "w", "  w  "} {
		if _, err := dc.Search(bad); !errors.Is(err, validation.ErrInvalidInput) {
			t.Errorf("Search(%q) expected ErrInvalidInput, got %v", bad, err)
		}
	}
}

func TestFilterAndStatistics(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testDataset())

	rx := dc.FilterByPrescription(true)
	if len(rx) != 1 || rx[0].GenericName != "warfarin" {
		t.Errorf("Unexpected prescription filter result %+v", rx)
	}
	if otc := dc.FilterByPrescription(false); len(otc) != 3 {
		t.Errorf("Expected 3 OTC medications, got %d", len(otc))
	}

	stats := dc.Statistics()
	if stats.TotalMedications != 4 || stats.PrescriptionRequired != 1 || stats.OverTheCounter != 3 {
		t.Errorf("Unexpected counts %+v", stats)
	}
	if stats.KnownInteractions != 2 {
		t.Errorf("Expected 2 known interactions, got %d", stats.KnownInteractions)
	}
	if len(stats.DosageForms) != 2 || stats.DosageForms[0] != "capsule" || stats.DosageForms[1] != "tablet" {
		t.Errorf("Unexpected dosage forms %v", stats.DosageForms)
	}
}

func TestLookupInteractionSymmetry(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testDataset())

	ab, ok1 := dc.LookupInteraction("warfarin", "ibuprofen")
	ba, ok2 := dc.LookupInteraction("ibuprofen", "warfarin")
	if !ok1 || !ok2 || ab != ba {
		t.Errorf("Expected symmetric lookup, got %+v/%v and %+v/%v", ab, ok1, ba, ok2)
	}
	if _, ok := dc.LookupInteraction("omeprazole", "ibuprofen"); ok {
		t.Error("Expected no interaction for unrelated pair")
	}
}

func TestBeginEndUpdate(t *testing.T) {
	dc := NewDataContainer()

	if !dc.BeginUpdate() {
		t.Fatal("First BeginUpdate should succeed")
	}
	if !dc.IsUpdating() {
		t.Error("Expected container to be updating")
	}
	if dc.BeginUpdate() {
		t.Error("Second BeginUpdate should fail while an update is running")
	}
	dc.EndUpdate()
	if dc.IsUpdating() {
		t.Error("Expected update flag cleared")
	}
}

func TestServerStartTime(t *testing.T) {
	dc := NewDataContainer()
	now := time.Now()
	dc.SetServerStartTime(now)
	if !dc.GetServerStartTime().Equal(now) {
		t.Error("Expected server start time to round-trip")
	}
}

func TestConcurrentReadsDuringUpdate(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testDataset())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				meds := dc.GetMedications()
				if len(meds) != 0 && len(meds) != 4 {
					t.Errorf("Observed partial snapshot with %d medications", len(meds))
					return
				}
				_, _ = dc.LookupInteraction("warfarin", "ibuprofen")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				dc.UpdateData(testDataset())
			}
		}()
	}
	wg.Wait()
}
