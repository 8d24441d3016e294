package index

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultSource = "FMC Insurance"

// BuiltinCorpus returns the built-in policy-exclusion corpus, distilled from
// the FMC Insurance drug formulary and prescription regulations.
func BuiltinCorpus() []Snippet {
	return []Snippet{
		{
			ID:     "fmc-vitamins",
			Source: defaultSource,
			Text: "Non-medically necessary items are not covered: vitamins, supplements, tonics, " +
				"herbal remedies, cosmetic products, weight-loss medications. Vitamin D is part of " +
				"routine checkup exclusions. Multivitamins → Not covered unless deficiency is proven by lab.",
		},
		{
			ID:     "fmc-hepatitis",
			Source: defaultSource,
			Text: "Hepatitis coverage: Hepatitis A screening and treatment → Covered. " +
				"All hepatitis types except Hepatitis A are not covered: Hepatitis B, " +
				"Hepatitis C, and Hepatitis E screening and treatment → Not covered.",
		},
		{
			ID:     "fmc-brand-substitution",
			Source: defaultSource,
			Text: "Brand substitution: non-formulary brands are not covered when a formulary brand " +
				"exists. Example: Panadol → Not covered; Adol → Covered. Substitution to covered " +
				"alternatives must be documented in the claim submission.",
		},
		{
			ID:     "fmc-strength",
			Source: defaultSource,
			Text: "Dosage and strength: only approved strengths are covered. " +
				"Example (Procid): Covered → Procid 20 mg; Not covered → Procid 40 mg.",
		},
		{
			ID:     "fmc-duration-acute",
			Source: defaultSource,
			Text: "Acute conditions (fever, cough, gastritis, sinusitis): maximum covered duration " +
				"10 days. Antibiotics for acute sinusitis → Covered up to 10 days. Cough syrups " +
				"(acute) → Covered, maximum 10 days. Prescriptions exceeding 10 days are not covered " +
				"unless medically justified and pre-authorized.",
		},
		{
			ID:     "fmc-duration-chronic",
			Source: defaultSource,
			Text: "Chronic conditions (diabetes, hypertension, asthma): maintenance medicines covered " +
				"up to 30 days per refill. Durations beyond 30 days require prior approval.",
		},
		{
			ID:     "fmc-experimental",
			Source: defaultSource,
			Text: "Experimental and non-standard therapies (stem cell therapy, unregistered biologics) " +
				"are not covered. Genetic testing without documented family-history risk factors → Not covered.",
		},
		{
			ID:     "fmc-otc",
			Source: defaultSource,
			Text: "Over-the-counter (OTC) medications are not covered unless prescribed by a licensed " +
				"physician and included in the formulary.",
		},
		{
			ID:     "fmc-compliance",
			Source: defaultSource,
			Text: "Prescription compliance: the prescription must match the clinical diagnosis and chief " +
				"complaints. Mismatch (e.g. headache complaint with sinusitis diagnosis) → Not covered. " +
				"All five clinical fields are mandatory for evaluation: Chief Complaints, Symptoms, " +
				"Diagnosis, Lab/Investigations, Pharmacy.",
		},
	}
}

// LoadCorpusFile reads a YAML policy corpus from disk.
// Format: a list of {id, source, text} entries.
func LoadCorpusFile(path string) ([]Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var snippets []Snippet
	if err := yaml.Unmarshal(data, &snippets); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	for i, s := range snippets {
		if s.ID == "" {
			return nil, fmt.Errorf("corpus entry %d: missing id", i)
		}
		if s.Text == "" {
			return nil, fmt.Errorf("corpus entry %s: missing text", s.ID)
		}
		if s.Source == "" {
			snippets[i].Source = defaultSource
		}
	}

	return snippets, nil
}
