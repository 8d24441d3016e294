package model

import "testing"

func TestCanonicalField(t *testing.T) {
	tests := []struct {
		label string
		want  FieldName
		ok    bool
	}{
		{"Chief Complaints", FieldComplaint, true},
		{"  dx  ", FieldDiagnosis, true},
		{"Lab/Investigations", FieldLab, true},
		{"Prescribed Medication", FieldPharmacy, true},
		{"RX", FieldPharmacy, true},
		{"Signs and Symptoms", FieldSymptoms, true},
		{"Invoice Number", "", false},
	}

	for _, tt := range tests {
		got, ok := CanonicalField(tt.label)
		if ok != tt.ok || got != tt.want {
			t.Errorf("CanonicalField(%q) = %q, %v; want %q, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSameField(t *testing.T) {
	if !SameField("Pharmacy", "prescribed medication") {
		t.Error("expected aliases of one field to match")
	}
	if SameField("Pharmacy", "Lab") {
		t.Error("expected different fields not to match")
	}
	// Labels outside the alias table only match themselves
	if !SameField("Custom Section", "custom section") {
		t.Error("expected unknown labels to match case-insensitively")
	}
	if SameField("Custom Section", "Other Section") {
		t.Error("expected distinct unknown labels not to match")
	}
}

func TestClaimFields_IsEmpty(t *testing.T) {
	if !(ClaimFields{}).IsEmpty() {
		t.Error("expected a blank claim to be empty")
	}
	if (ClaimFields{Lab: "CBC"}).IsEmpty() {
		t.Error("expected a claim with one field to be non-empty")
	}
}
