package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/insuragent/claimcheck/internal/model"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	p, err := NewPipeline(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func TestPipeline_ClinicalFlagOnly(t *testing.T) {
	p := newTestPipeline(t)
	fields := model.ClaimFields{
		Complaint: "Pain while passing stool",
		Diagnosis: "Piles",
		Pharmacy:  "Daflon 500mg, levosiz-M",
	}

	result, err := p.EvaluateClaim(context.Background(), "Patient 1", fields)
	if err != nil {
		t.Fatalf("EvaluateClaim failed: %v", err)
	}

	// A clinical flag lowers the score but never flips the decision
	if result.FinalDecision != model.DecisionAllowed {
		t.Errorf("expected Allowed, got %s", result.FinalDecision)
	}
	if result.ApprovalScore != 80 {
		t.Errorf("expected score 80 with one unresolved flag, got %d", result.ApprovalScore)
	}

	if len(result.ClinicalFlags) != 1 {
		t.Fatalf("expected 1 clinical flag, got %d", len(result.ClinicalFlags))
	}
	flag := result.ClinicalFlags[0]
	if flag.Field != "pharmacy" {
		t.Errorf("expected the pharmacy field flagged, got %q", flag.Field)
	}
	if flag.FlaggedItem != "levosiz-M" {
		t.Errorf("expected only the inappropriate item flagged, got %q", flag.FlaggedItem)
	}
	if len(flag.Recommendations) == 0 || len(flag.Recommendations) > 3 {
		t.Errorf("expected 1-3 alternatives, got %v", flag.Recommendations)
	}

	for _, fr := range result.FieldResults {
		if fr.Decision != model.DecisionAllowed {
			t.Errorf("expected every field Allowed, got %s for %s", fr.Decision, fr.Field)
		}
	}
}

func TestPipeline_FullClaimWithInappropriateMedication(t *testing.T) {
	p := newTestPipeline(t)
	fields := model.ClaimFields{
		Complaint: "Stomach pain",
		Symptoms:  "Abdominal discomfort",
		Diagnosis: "Piles",
		Lab:       "Blood test",
		Pharmacy:  "levosiz-M",
	}

	result, err := p.EvaluateClaim(context.Background(), "Patient 7", fields)
	if err != nil {
		t.Fatalf("EvaluateClaim failed: %v", err)
	}

	if result.FinalDecision != model.DecisionAllowed {
		t.Errorf("expected Allowed, got %s", result.FinalDecision)
	}
	if result.ApprovalScore != 80 {
		t.Errorf("expected score 80, got %d", result.ApprovalScore)
	}
	if len(result.ClinicalFlags) != 1 || result.ClinicalFlags[0].FlaggedItem != "levosiz-M" {
		t.Errorf("expected levosiz-M flagged, got %v", result.ClinicalFlags)
	}
}

func TestPipeline_PolicyExclusion(t *testing.T) {
	p := newTestPipeline(t)
	fields := model.ClaimFields{
		Diagnosis: "Acute Sinusitis",
		Pharmacy:  "Panadol",
	}

	result, err := p.EvaluateClaim(context.Background(), "Patient 2", fields)
	if err != nil {
		t.Fatalf("EvaluateClaim failed: %v", err)
	}

	if result.FinalDecision != model.DecisionExcluded {
		t.Errorf("expected Excluded, got %s", result.FinalDecision)
	}
	if result.ApprovalScore != 80 {
		t.Errorf("expected score 80 with one exclusion, got %d", result.ApprovalScore)
	}

	fr := result.Result(model.FieldPharmacy)
	if fr == nil || fr.Decision != model.DecisionExcluded {
		t.Fatalf("expected the pharmacy field Excluded, got %+v", fr)
	}
	if len(fr.Recommendations) == 0 || !strings.Contains(fr.Recommendations[0], "Adol") {
		t.Errorf("expected the covered brand as first alternative, got %v", fr.Recommendations)
	}

	found := false
	for _, src := range result.PolicySources {
		if src == "FMC Insurance" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the matched policy source recorded, got %v", result.PolicySources)
	}
}

func TestPipeline_CleanClaim(t *testing.T) {
	p := newTestPipeline(t)
	fields := model.ClaimFields{
		Complaint: "High temperature",
		Diagnosis: "Fever",
		Pharmacy:  "Paracetamol 500 mg",
	}

	result, err := p.EvaluateClaim(context.Background(), "Patient 3", fields)
	if err != nil {
		t.Fatalf("EvaluateClaim failed: %v", err)
	}

	if result.FinalDecision != model.DecisionAllowed {
		t.Errorf("expected Allowed, got %s", result.FinalDecision)
	}
	if result.ApprovalScore != 100 {
		t.Errorf("expected a full score, got %d", result.ApprovalScore)
	}
	if len(result.ClinicalFlags) != 0 {
		t.Errorf("expected no flags, got %v", result.ClinicalFlags)
	}
}

func TestPipeline_EmptyClaim(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.EvaluateClaim(context.Background(), "Patient 4", model.ClaimFields{})
	if !errors.Is(err, ErrInvalidClaim) {
		t.Errorf("expected ErrInvalidClaim, got %v", err)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	p := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.EvaluateClaim(ctx, "Patient 8", model.ClaimFields{Diagnosis: "Fever"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected the cancellation surfaced, got %v", err)
	}
}

func TestPipeline_FieldOrderDeterministic(t *testing.T) {
	p := newTestPipeline(t)
	fields := model.ClaimFields{
		Complaint: "Fatigue",
		Symptoms:  "Tiredness, low energy",
		Diagnosis: "Fever",
		Lab:       "CBC",
		Pharmacy:  "Paracetamol 500 mg",
	}

	result, err := p.EvaluateClaim(context.Background(), "Patient 5", fields)
	if err != nil {
		t.Fatalf("EvaluateClaim failed: %v", err)
	}

	if len(result.FieldResults) != len(model.FieldOrder) {
		t.Fatalf("expected %d field results, got %d", len(model.FieldOrder), len(result.FieldResults))
	}
	for i, fr := range result.FieldResults {
		if fr.Field != model.FieldOrder[i] {
			t.Errorf("position %d: expected %s, got %s", i, model.FieldOrder[i], fr.Field)
		}
	}
}

func TestPipeline_PartialClaim(t *testing.T) {
	p := newTestPipeline(t)

	// Only submitted fields are evaluated
	result, err := p.EvaluateClaim(context.Background(), "Patient 6", model.ClaimFields{Lab: "Vitamin D"})
	if err != nil {
		t.Fatalf("EvaluateClaim failed: %v", err)
	}

	if len(result.FieldResults) != 1 {
		t.Fatalf("expected 1 field result, got %d", len(result.FieldResults))
	}
	if result.FieldResults[0].Field != model.FieldLab {
		t.Errorf("expected the lab field, got %s", result.FieldResults[0].Field)
	}
	if result.FieldResults[0].Decision != model.DecisionExcluded {
		t.Errorf("expected Vitamin D excluded, got %s", result.FieldResults[0].Decision)
	}
}
