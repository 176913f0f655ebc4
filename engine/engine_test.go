package engine

import "github.com/cogitto/cogitto-api/entities"

func testCatalogue() []entities.Medication {
	return []entities.Medication{
		{ID: "1", GenericName: "acetaminophen", BrandNames: []string{"Tylenol", "Panadol"},
			Warnings: []string{"Do not exceed 4000mg per day", "Hepatotoxicity with overdose"}},
		{ID: "2", GenericName: "ibuprofen", BrandNames: []string{"Advil", "Motrin"}},
		{ID: "3", GenericName: "lisinopril", BrandNames: []string{"Prinivil", "Zestril"}, PrescriptionRequired: true,
			Warnings: []string{"Monitor blood pressure", "May cause dry cough"}},
		{ID: "5", GenericName: "atorvastatin", BrandNames: []string{"Lipitor"}, PrescriptionRequired: true},
		{ID: "6", GenericName: "omeprazole", BrandNames: []string{"Prilosec"}},
		{ID: "7", GenericName: "warfarin", BrandNames: []string{"Coumadin"}, PrescriptionRequired: true},
	}
}

func testTable() *entities.InteractionTable {
	return entities.NewInteractionTable([]entities.Interaction{
		{Medications: [2]string{"warfarin", "ibuprofen"}, Severity: entities.SeverityMajor,
			Description: "Increased bleeding risk", Recommendation: "Avoid combination."},
		{Medications: [2]string{"warfarin", "acetaminophen"}, Severity: entities.SeverityModerate,
			Description: "High doses may enhance warfarin effect", Recommendation: "Monitor INR"},
		{Medications: [2]string{"lisinopril", "ibuprofen"}, Severity: entities.SeverityModerate,
			Description: "Reduced effectiveness of ACE inhibitor", Recommendation: "Monitor blood pressure."},
	})
}
