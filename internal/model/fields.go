package model

// FieldName identifies one of the five clinical claim fields
type FieldName string

const (
	FieldComplaint FieldName = "complaint" // Chief complaint
	FieldSymptoms  FieldName = "symptoms"  // Reported symptoms
	FieldDiagnosis FieldName = "diagnosis" // Stated diagnosis
	FieldLab       FieldName = "lab"       // Lab tests / investigations
	FieldPharmacy  FieldName = "pharmacy"  // Prescribed medications
)

// FieldOrder is the canonical iteration order for claim fields.
// Consolidation and rendering both follow it so results are deterministic.
var FieldOrder = []FieldName{FieldComplaint, FieldSymptoms, FieldDiagnosis, FieldLab, FieldPharmacy}

// ClaimFields holds the raw submitted values of one claim.
// Empty slots mean the field was not submitted.
type ClaimFields struct {
	Complaint string `json:"complaint,omitempty" yaml:"complaint,omitempty"`
	Symptoms  string `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty" yaml:"diagnosis,omitempty"`
	Lab       string `json:"lab,omitempty" yaml:"lab,omitempty"`
	Pharmacy  string `json:"pharmacy,omitempty" yaml:"pharmacy,omitempty"`
}

// Value returns the submitted value for a field
func (c ClaimFields) Value(f FieldName) string {
	switch f {
	case FieldComplaint:
		return c.Complaint
	case FieldSymptoms:
		return c.Symptoms
	case FieldDiagnosis:
		return c.Diagnosis
	case FieldLab:
		return c.Lab
	case FieldPharmacy:
		return c.Pharmacy
	}
	return ""
}

// Set assigns the value for a field
func (c *ClaimFields) Set(f FieldName, value string) {
	switch f {
	case FieldComplaint:
		c.Complaint = value
	case FieldSymptoms:
		c.Symptoms = value
	case FieldDiagnosis:
		c.Diagnosis = value
	case FieldLab:
		c.Lab = value
	case FieldPharmacy:
		c.Pharmacy = value
	}
}

// IsEmpty reports whether no field carries a value.
// A claim with all five slots empty is not evaluable.
func (c ClaimFields) IsEmpty() bool {
	for _, f := range FieldOrder {
		if c.Value(f) != "" {
			return false
		}
	}
	return true
}
