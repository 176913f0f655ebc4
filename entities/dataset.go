package entities

// Dataset is the reference data loaded at startup.
type Dataset struct {
	Medications  []Medication  `json:"medications"`
	Interactions []Interaction `json:"interactions"`
}
