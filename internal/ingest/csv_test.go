package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/insuragent/claimcheck/internal/model"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write claims file: %v", err)
	}
	return path
}

func TestReadClaims_HeaderAliases(t *testing.T) {
	path := writeCSV(t,
		"Patient Name,Chief Complaints,Dx,Lab/Investigations,Prescribed Medication\n"+
			"Ahmed,Facial pain,Acute Sinusitis,Sinus X-ray,Amoxicillin 500 mg\n")

	claims, err := ReadClaims(path)
	if err != nil {
		t.Fatalf("ReadClaims failed: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}

	c := claims[0]
	if c.Name != "Ahmed" {
		t.Errorf("expected the name column picked up, got %q", c.Name)
	}
	if c.Fields.Complaint != "Facial pain" {
		t.Errorf("Chief Complaints not mapped: %q", c.Fields.Complaint)
	}
	if c.Fields.Diagnosis != "Acute Sinusitis" {
		t.Errorf("Dx not mapped: %q", c.Fields.Diagnosis)
	}
	if c.Fields.Lab != "Sinus X-ray" {
		t.Errorf("Lab/Investigations not mapped: %q", c.Fields.Lab)
	}
	if c.Fields.Pharmacy != "Amoxicillin 500 mg" {
		t.Errorf("Prescribed Medication not mapped: %q", c.Fields.Pharmacy)
	}
}

func TestReadClaims_DefaultNames(t *testing.T) {
	path := writeCSV(t,
		"Diagnosis,Medication\n"+
			"Fever,Paracetamol\n"+
			"Piles,Daflon\n")

	claims, err := ReadClaims(path)
	if err != nil {
		t.Fatalf("ReadClaims failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[0].Name != "Patient 1" || claims[1].Name != "Patient 2" {
		t.Errorf("expected generated names, got %q and %q", claims[0].Name, claims[1].Name)
	}
}

func TestReadClaims_EmptyNameCell(t *testing.T) {
	path := writeCSV(t,
		"Name,Diagnosis\n"+
			"Sara,Fever\n"+
			",Piles\n")

	claims, err := ReadClaims(path)
	if err != nil {
		t.Fatalf("ReadClaims failed: %v", err)
	}
	if claims[0].Name != "Sara" {
		t.Errorf("expected the given name, got %q", claims[0].Name)
	}
	if claims[1].Name != "Patient 2" {
		t.Errorf("expected a generated name for the empty cell, got %q", claims[1].Name)
	}
}

func TestReadClaims_UnknownColumnsIgnored(t *testing.T) {
	path := writeCSV(t,
		"Name,Diagnosis,Insurance No,Visit Date\n"+
			"Omar,Fever,883-221,2026-08-01\n")

	claims, err := ReadClaims(path)
	if err != nil {
		t.Fatalf("ReadClaims failed: %v", err)
	}

	c := claims[0]
	if c.Fields.Diagnosis != "Fever" {
		t.Errorf("expected the diagnosis mapped, got %q", c.Fields.Diagnosis)
	}
	for _, f := range model.FieldOrder {
		if f == model.FieldDiagnosis {
			continue
		}
		if v := c.Fields.Value(f); v != "" {
			t.Errorf("expected %s empty, got %q", f, v)
		}
	}
}

func TestReadClaims_FirstColumnWinsPerField(t *testing.T) {
	path := writeCSV(t,
		"Name,Medication,Drugs\n"+
			"Lina,Paracetamol,Ibuprofen\n")

	claims, err := ReadClaims(path)
	if err != nil {
		t.Fatalf("ReadClaims failed: %v", err)
	}
	if claims[0].Fields.Pharmacy != "Paracetamol" {
		t.Errorf("expected the first matching column kept, got %q", claims[0].Fields.Pharmacy)
	}
}

func TestReadClaims_NoRecognizableColumns(t *testing.T) {
	path := writeCSV(t,
		"Invoice,Amount\n"+
			"INV-1,120.00\n")

	_, err := ReadClaims(path)
	if !errors.Is(err, ErrNoFields) {
		t.Errorf("expected ErrNoFields, got %v", err)
	}
}

func TestReadClaims_MalformedRowBecomesErrorClaim(t *testing.T) {
	claims, err := readClaims(strings.NewReader(
		"Name,Diagnosis\n" +
			"Sara,Fever\n" +
			"Omar,Fe\"ver\n" +
			"Lina,Piles\n"))
	if err != nil {
		t.Fatalf("readClaims failed: %v", err)
	}
	if len(claims) != 3 {
		t.Fatalf("expected 3 claims including the bad row, got %d", len(claims))
	}

	if claims[0].Err != nil || claims[0].Fields.Diagnosis != "Fever" {
		t.Errorf("expected the row before the bad one intact, got %+v", claims[0])
	}
	if claims[1].Err == nil {
		t.Error("expected a parse error carried on the malformed row")
	}
	if claims[1].Name != "Patient 2" {
		t.Errorf("expected a generated name for the malformed row, got %q", claims[1].Name)
	}
	if claims[2].Err != nil || claims[2].Fields.Diagnosis != "Piles" {
		t.Errorf("expected reading to continue past the bad row, got %+v", claims[2])
	}
}

func TestReadClaims_RaggedRowsTolerated(t *testing.T) {
	claims, err := readClaims(strings.NewReader(
		"Name,Diagnosis,Medication\n" +
			"Sara,Fever\n" +
			"Omar,Piles,Daflon,extra\n"))
	if err != nil {
		t.Fatalf("readClaims failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}

	if claims[0].Err != nil || claims[0].Fields.Diagnosis != "Fever" {
		t.Errorf("expected the short row parsed, got %+v", claims[0])
	}
	if claims[0].Fields.Pharmacy != "" {
		t.Errorf("expected the missing cell left empty, got %q", claims[0].Fields.Pharmacy)
	}
	if claims[1].Err != nil || claims[1].Fields.Pharmacy != "Daflon" {
		t.Errorf("expected the long row parsed, got %+v", claims[1])
	}
}

func TestReadClaims_MissingFile(t *testing.T) {
	if _, err := ReadClaims(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
