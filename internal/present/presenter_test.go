package present

import (
	"context"
	"testing"

	"github.com/insuragent/claimcheck/internal/embed"
	"github.com/insuragent/claimcheck/internal/evaluate"
	"github.com/insuragent/claimcheck/internal/index"
	"github.com/insuragent/claimcheck/internal/model"
	"github.com/insuragent/claimcheck/internal/oracle"
	"github.com/insuragent/claimcheck/internal/score"
)

func newPresenter(t *testing.T) *Presenter {
	t.Helper()
	idx := index.New(embed.NewHashEmbedder(0))
	if err := idx.Load(context.Background(), index.BuiltinCorpus()); err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	o := oracle.NewScriptedOracle()
	return NewPresenter(
		evaluate.NewFieldEvaluator(idx, o, nil, 0, 0),
		evaluate.NewChecker(o, nil),
	)
}

func excludedClaim() *model.ClaimResult {
	r := &model.ClaimResult{
		CaseID: "Patient 1",
		FieldResults: []model.FieldResult{
			{Field: model.FieldDiagnosis, Value: "Acute Sinusitis", Decision: model.DecisionAllowed},
			{
				Field:           model.FieldPharmacy,
				Value:           "Panadol",
				Decision:        model.DecisionExcluded,
				Explanation:     "Panadol is non-formulary and not covered.",
				Recommendations: []string{"Adol"},
			},
		},
	}
	score.NewScorer().Rescore(r)
	return r
}

func flaggedClaim() *model.ClaimResult {
	r := &model.ClaimResult{
		CaseID: "Patient 2",
		FieldResults: []model.FieldResult{
			{Field: model.FieldDiagnosis, Value: "Piles", Decision: model.DecisionAllowed},
			{Field: model.FieldPharmacy, Value: "Daflon 500mg, levosiz-M", Decision: model.DecisionAllowed},
		},
		ClinicalFlags: []model.ClinicalFlag{
			{
				Field:           "pharmacy",
				FlaggedItem:     "levosiz-M",
				Recommendations: []string{"Topical hemorrhoid cream", "Oral flavonoid preparation"},
			},
		},
	}
	score.NewScorer().Rescore(r)
	return r
}

func TestPresenter_ApplyPolicy(t *testing.T) {
	p := newPresenter(t)
	result := excludedClaim()

	if result.ApprovalScore != 80 {
		t.Fatalf("expected score 80 before apply, got %d", result.ApprovalScore)
	}

	if err := p.ApplyPolicy(result, model.FieldPharmacy, []string{"Adol"}); err != nil {
		t.Fatalf("ApplyPolicy failed: %v", err)
	}

	fr := result.Result(model.FieldPharmacy)
	if fr.Decision != model.DecisionAllowed {
		t.Errorf("expected the field flipped to Allowed, got %s", fr.Decision)
	}
	if !fr.Applied || fr.AppliedNote != "Adol" {
		t.Errorf("expected applied marker with the selection, got applied=%v note=%q", fr.Applied, fr.AppliedNote)
	}
	if result.FinalDecision != model.DecisionAllowed {
		t.Errorf("expected the claim decision re-derived, got %s", result.FinalDecision)
	}
	if result.ApprovalScore != 100 {
		t.Errorf("expected score 100 after apply, got %d", result.ApprovalScore)
	}
}

func TestPresenter_ApplyPolicy_MultipleSelections(t *testing.T) {
	p := newPresenter(t)
	result := excludedClaim()

	if err := p.ApplyPolicy(result, model.FieldPharmacy, []string{"Adol", "Paracetamol"}); err != nil {
		t.Fatalf("ApplyPolicy failed: %v", err)
	}

	fr := result.Result(model.FieldPharmacy)
	if fr.AppliedNote != "Adol (+1 more selected)" {
		t.Errorf("expected the multi-selection note, got %q", fr.AppliedNote)
	}
}

func TestPresenter_ApplyPolicy_Twice(t *testing.T) {
	p := newPresenter(t)
	result := excludedClaim()

	if err := p.ApplyPolicy(result, model.FieldPharmacy, []string{"Adol"}); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if err := p.ApplyPolicy(result, model.FieldPharmacy, []string{"Adol"}); err == nil {
		t.Error("expected second apply rejected")
	}
}

func TestPresenter_ApplyPolicy_Validation(t *testing.T) {
	p := newPresenter(t)
	result := excludedClaim()

	if err := p.ApplyPolicy(result, model.FieldPharmacy, nil); err == nil {
		t.Error("expected empty selection rejected")
	}
	if err := p.ApplyPolicy(result, model.FieldLab, []string{"X"}); err == nil {
		t.Error("expected apply on an absent field rejected")
	}
	if err := p.ApplyPolicy(result, model.FieldDiagnosis, []string{"X"}); err == nil {
		t.Error("expected apply on an allowed field rejected")
	}
}

func TestPresenter_ApplyClinical(t *testing.T) {
	p := newPresenter(t)
	result := flaggedClaim()

	if result.ApprovalScore != 80 {
		t.Fatalf("expected score 80 before apply, got %d", result.ApprovalScore)
	}

	if err := p.ApplyClinical(result, "Pharmacy", []string{"Topical hemorrhoid cream"}); err != nil {
		t.Fatalf("ApplyClinical failed: %v", err)
	}

	if !result.ClinicalFlags[0].Resolved {
		t.Error("expected the flag marked resolved")
	}
	if result.ApprovalScore != 100 {
		t.Errorf("expected score 100 after resolving the flag, got %d", result.ApprovalScore)
	}

	if err := p.ApplyClinical(result, "pharmacy", []string{"X"}); err == nil {
		t.Error("expected apply on a resolved flag rejected")
	}
}

func TestPresenter_Recommendations_DropsHandledItems(t *testing.T) {
	p := newPresenter(t)
	result := flaggedClaim()

	before := p.Recommendations(result)
	if len(before) != 1 {
		t.Fatalf("expected 1 pending recommendation, got %d", len(before))
	}

	if err := p.ApplyClinical(result, "pharmacy", []string{"Topical hemorrhoid cream"}); err != nil {
		t.Fatalf("ApplyClinical failed: %v", err)
	}

	if after := p.Recommendations(result); len(after) != 0 {
		t.Errorf("expected no pending recommendations after apply, got %d", len(after))
	}
}

func TestPresenter_RegeneratePolicy(t *testing.T) {
	p := newPresenter(t)
	result := excludedClaim()
	fields := model.ClaimFields{Diagnosis: "Acute Sinusitis", Pharmacy: "Panadol"}

	fr := result.Result(model.FieldPharmacy)
	valueBefore := fr.Value

	if err := p.RegeneratePolicy(context.Background(), result, fields, model.FieldPharmacy); err != nil {
		t.Fatalf("RegeneratePolicy failed: %v", err)
	}

	// Identity untouched, only the alternatives refreshed
	if fr.Value != valueBefore || fr.Decision != model.DecisionExcluded {
		t.Error("expected regeneration to leave the field identity alone")
	}
	if len(fr.Recommendations) == 0 || len(fr.Recommendations) > 2 {
		t.Errorf("expected 1-2 fresh alternatives, got %v", fr.Recommendations)
	}

	// Applied items cannot be regenerated
	if err := p.ApplyPolicy(result, model.FieldPharmacy, []string{fr.Recommendations[0]}); err != nil {
		t.Fatalf("ApplyPolicy failed: %v", err)
	}
	if err := p.RegeneratePolicy(context.Background(), result, fields, model.FieldPharmacy); err == nil {
		t.Error("expected regenerate rejected after apply")
	}
}

func TestPresenter_RegenerateClinical(t *testing.T) {
	p := newPresenter(t)
	result := flaggedClaim()
	fields := model.ClaimFields{Diagnosis: "Piles", Pharmacy: "Daflon 500mg, levosiz-M"}

	if err := p.RegenerateClinical(context.Background(), result, fields, "pharmacy"); err != nil {
		t.Fatalf("RegenerateClinical failed: %v", err)
	}

	flag := result.ClinicalFlags[0]
	if flag.FlaggedItem != "levosiz-M" {
		t.Errorf("expected the flag identity preserved, got %q", flag.FlaggedItem)
	}
	if len(flag.Recommendations) == 0 || len(flag.Recommendations) > 3 {
		t.Errorf("expected 1-3 fresh alternatives, got %v", flag.Recommendations)
	}
}
