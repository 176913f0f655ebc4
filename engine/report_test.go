package engine

import (
	"slices"
	"testing"

	"github.com/cogitto/cogitto-api/entities"
)

func TestBuildReportMajorPair(t *testing.T) {
	report := BuildReport([]string{"warfarin", "ibuprofen"}, testTable())

	if len(report.Details) != 1 {
		t.Fatalf("Expected exactly one detail, got %d", len(report.Details))
	}
	if report.Details[0].Severity != entities.SeverityMajor {
		t.Errorf("Expected major severity, got %s", report.Details[0].Severity)
	}
	if !slices.Equal(report.Warnings, []string{"MAJOR: warfarin + ibuprofen"}) {
		t.Errorf("Unexpected warnings %v", report.Warnings)
	}
	if report.Empty() {
		t.Error("Report should not be empty")
	}
}

func TestBuildReportUsesInputOrder(t *testing.T) {
	report := BuildReport([]string{"ibuprofen", "warfarin"}, testTable())

	if !slices.Equal(report.Warnings, []string{"MAJOR: ibuprofen + warfarin"}) {
		t.Errorf("Expected names in input order, got %v", report.Warnings)
	}
	if report.Details[0].Medications != [2]string{"ibuprofen", "warfarin"} {
		t.Errorf("Unexpected detail pair %v", report.Details[0].Medications)
	}
}

func TestBuildReportAllPairs(t *testing.T) {
	report := BuildReport([]string{"acetaminophen", "ibuprofen", "lisinopril", "warfarin"}, testTable())

	want := []string{
		"MODERATE: acetaminophen + warfarin",
		"MODERATE: ibuprofen + lisinopril",
		"MAJOR: ibuprofen + warfarin",
	}
	if !slices.Equal(report.Warnings, want) {
		t.Errorf("Warnings = %v, want %v", report.Warnings, want)
	}
	if len(report.Details) != 3 {
		t.Errorf("Expected 3 details, got %d", len(report.Details))
	}
}

func TestBuildReportFewerThanTwo(t *testing.T) {
	for _, meds := range [][]string{nil, {}, {"warfarin"}} {
		report := BuildReport(meds, testTable())
		if !report.Empty() || len(report.Warnings) != 0 {
			t.Errorf("Expected empty report for %v, got %+v", meds, report)
		}
		if report.Warnings == nil || report.Details == nil {
			t.Error("Report slices should be empty, not nil")
		}
	}
}

func TestBuildReportNoKnownInteraction(t *testing.T) {
	report := BuildReport([]string{"omeprazole", "atorvastatin"}, testTable())
	if !report.Empty() {
		t.Errorf("Expected empty report, got %+v", report)
	}

	if !BuildReport([]string{"warfarin", "ibuprofen"}, nil).Empty() {
		t.Error("Expected empty report without a lookup")
	}
}

func TestLookupSymmetryOverCatalogue(t *testing.T) {
	table := testTable()
	catalogue := testCatalogue()
	for _, a := range catalogue {
		for _, b := range catalogue {
			ab, okAB := table.Lookup(a.GenericName, b.GenericName)
			ba, okBA := table.Lookup(b.GenericName, a.GenericName)
			if okAB != okBA || ab != ba {
				t.Errorf("Lookup(%s, %s) is not symmetric", a.GenericName, b.GenericName)
			}
		}
	}
}
