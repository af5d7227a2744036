package entity

// EmergencyContact is an optional patient emergency contact.
type EmergencyContact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Insurance is an optional patient insurance record.
type Insurance struct {
	Provider      string `json:"provider,omitempty"`
	PrimaryHolder string `json:"primary_holder,omitempty"`
}

// PatientInfo holds the structured patient fields the language model
// extracts from the transcript. Every field is optional; the model fills
// whatever the conversation supports.
type PatientInfo struct {
	Name              string            `json:"name,omitempty"`
	DateOfBirth       string            `json:"date_of_birth,omitempty"`
	Age               string            `json:"age,omitempty"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact,omitempty"`
	Insurance         *Insurance        `json:"insurance,omitempty"`
	PreferredPharmacy string            `json:"preferred_pharmacy,omitempty"`
}

// SoapSections is the note body: Subjective, Objective, Assessment, Plan.
type SoapSections struct {
	Subjective string `json:"S"`
	Objective  string `json:"O"`
	Assessment string `json:"A"`
	Plan       string `json:"P"`
}

// SoapNote is the structured note synthesized by the language model.
// It is provider-trusted content; the client only verifies that both
// top-level sections are present before handing it to callers.
type SoapNote struct {
	PatientInfo *PatientInfo  `json:"patient_info"`
	Note        *SoapSections `json:"soap_note"`
}
