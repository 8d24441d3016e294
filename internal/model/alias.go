package model

import "strings"

// fieldAliases maps known synonyms and spellings to canonical field names.
// The policy evaluator, the clinical checker and the CSV ingester all name fields
// independently; this table is the single source of truth that keeps them aligned.
// Both UI surfaces consolidate through it, so suppression results cannot drift.
var fieldAliases = map[string]FieldName{
	"complaint":            FieldComplaint,
	"complaints":           FieldComplaint,
	"chief complaint":      FieldComplaint,
	"chief complaints":     FieldComplaint,
	"chief_complaint":      FieldComplaint,
	"chief_complaints":     FieldComplaint,
	"presenting complaint": FieldComplaint,
	"presenting_complaint": FieldComplaint,

	"symptoms":           FieldSymptoms,
	"symptom":            FieldSymptoms,
	"signs":              FieldSymptoms,
	"signs_and_symptoms": FieldSymptoms,
	"signs and symptoms": FieldSymptoms,

	"diagnosis":             FieldDiagnosis,
	"diagnoses":             FieldDiagnosis,
	"dx":                    FieldDiagnosis,
	"condition":             FieldDiagnosis,
	"provisional diagnosis": FieldDiagnosis,
	"provisional_diagnosis": FieldDiagnosis,

	"lab":                FieldLab,
	"labs":               FieldLab,
	"laboratory":         FieldLab,
	"lab_test":           FieldLab,
	"lab test":           FieldLab,
	"lab_tests":          FieldLab,
	"lab tests":          FieldLab,
	"test":               FieldLab,
	"tests":              FieldLab,
	"investigation":      FieldLab,
	"investigations":     FieldLab,
	"lab/investigations": FieldLab,

	"pharmacy":                        FieldPharmacy,
	"prescribed_medication":           FieldPharmacy,
	"prescribed medication":           FieldPharmacy,
	"medication":                      FieldPharmacy,
	"medications":                     FieldPharmacy,
	"drug":                            FieldPharmacy,
	"drugs":                           FieldPharmacy,
	"medicine":                        FieldPharmacy,
	"medicines":                       FieldPharmacy,
	"med":                             FieldPharmacy,
	"meds":                            FieldPharmacy,
	"rx":                              FieldPharmacy,
	"payer_product_category_name":     FieldPharmacy,
}

// CanonicalField resolves a free-form field label to its canonical name.
// Matching is case-insensitive and tolerant of surrounding whitespace.
func CanonicalField(name string) (FieldName, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	f, ok := fieldAliases[key]
	return f, ok
}

// SameField reports whether two free-form field labels refer to the same
// canonical field. Unresolvable labels only match themselves.
func SameField(a, b string) bool {
	fa, oka := CanonicalField(a)
	fb, okb := CanonicalField(b)
	if oka && okb {
		return fa == fb
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
