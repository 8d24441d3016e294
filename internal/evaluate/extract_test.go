package evaluate

import (
	"testing"

	"github.com/insuragent/claimcheck/internal/model"
)

func TestExtractPolicyAlternatives_BrandPair(t *testing.T) {
	clause := "Brand substitution: non-formulary brands are not covered when a formulary brand " +
		"exists. Example: Panadol → Not covered; Adol → Covered."

	alts := extractPolicyAlternatives(model.FieldPharmacy, "Panadol", clause, "Acute Sinusitis")
	if len(alts) != 1 {
		t.Fatalf("expected 1 alternative, got %v", alts)
	}
	if alts[0] != "Adol" {
		t.Errorf("expected Adol extracted from the clause, got %q", alts[0])
	}
}

func TestExtractPolicyAlternatives_ApprovedStrength(t *testing.T) {
	clause := "Dosage and strength: only approved strengths are covered. " +
		"Example (Procid): Covered → Procid 20 mg; Not covered → Procid 40 mg."

	alts := extractPolicyAlternatives(model.FieldPharmacy, "Procid 40 mg", clause, "")
	if len(alts) != 1 {
		t.Fatalf("expected 1 alternative, got %v", alts)
	}
	if alts[0] != "Procid 20 mg" {
		t.Errorf("expected the approved strength, got %q", alts[0])
	}
}

func TestExtractPolicyAlternatives_DurationLimit(t *testing.T) {
	clause := "Acute conditions: maximum covered duration 10 days. Prescriptions exceeding " +
		"10 days are not covered unless medically justified and pre-authorized."

	alts := extractPolicyAlternatives(model.FieldPharmacy, "Amoxicillin 500 mg for 15 days", clause, "Bronchitis")
	if len(alts) != 1 {
		t.Fatalf("expected 1 alternative, got %v", alts)
	}
	if alts[0] != "Amoxicillin 500 mg for 10 days" {
		t.Errorf("expected the same drug within the limit, got %q", alts[0])
	}
}

func TestExtractPolicyAlternatives_NothingUsable(t *testing.T) {
	clause := "Over-the-counter (OTC) medications are not covered unless prescribed by a " +
		"licensed physician and included in the formulary."

	if alts := extractPolicyAlternatives(model.FieldPharmacy, "Strepsils", clause, ""); len(alts) != 0 {
		t.Errorf("expected no extraction from a clause naming no covered item, got %v", alts)
	}

	if alts := extractPolicyAlternatives(model.FieldLab, "Vitamin D", "", ""); len(alts) != 0 {
		t.Errorf("expected no extraction from an empty clause, got %v", alts)
	}
}

func TestExtractPolicyAlternatives_SkipsExcludedItemItself(t *testing.T) {
	clause := "Example: Adol → Covered."

	if alts := extractPolicyAlternatives(model.FieldPharmacy, "Adol", clause, ""); len(alts) != 0 {
		t.Errorf("expected the submitted item filtered out of alternatives, got %v", alts)
	}
}
