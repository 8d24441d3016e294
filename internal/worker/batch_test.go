package worker

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/insuragent/claimcheck/internal/ingest"
	"github.com/insuragent/claimcheck/internal/model"
)

// mockEvaluator implements Evaluator
type mockEvaluator struct {
	failOn map[string]bool
	delay  time.Duration
	calls  []string
}

func (m *mockEvaluator) EvaluateClaim(ctx context.Context, caseID string, fields model.ClaimFields) (*model.ClaimResult, error) {
	m.calls = append(m.calls, caseID)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.failOn[caseID] {
		return nil, errors.New("evaluation failed")
	}
	return &model.ClaimResult{
		CaseID:        caseID,
		FinalDecision: model.DecisionAllowed,
		ApprovalScore: 100,
	}, nil
}

func testClaims(names ...string) []ingest.Claim {
	claims := make([]ingest.Claim, len(names))
	for i, name := range names {
		claims[i] = ingest.Claim{
			Name:   name,
			Fields: model.ClaimFields{Diagnosis: "Fever"},
		}
	}
	return claims
}

func TestBatchProcessor_ProcessClaims(t *testing.T) {
	evaluator := &mockEvaluator{}
	processor := NewBatchProcessor(evaluator, 0)

	results := processor.ProcessClaims(context.Background(), testClaims("A", "B", "C"), nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Sequential: claims evaluated in table order
	for i, want := range []string{"A", "B", "C"} {
		if evaluator.calls[i] != want {
			t.Errorf("expected claim %s at position %d, got %s", want, i, evaluator.calls[i])
		}
	}
}

func TestBatchProcessor_FailedClaimBecomesErrorRow(t *testing.T) {
	evaluator := &mockEvaluator{failOn: map[string]bool{"B": true}}
	processor := NewBatchProcessor(evaluator, 0)

	results := processor.ProcessClaims(context.Background(), testClaims("A", "B", "C"), nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results including the error row, got %d", len(results))
	}
	if results[1].FinalDecision != model.DecisionError {
		t.Errorf("expected Error decision for failed claim, got %s", results[1].FinalDecision)
	}
	if results[1].Err == "" {
		t.Error("expected error message on the error row")
	}
	if results[2].FinalDecision != model.DecisionAllowed {
		t.Errorf("expected the batch to continue past the failed claim, got %s", results[2].FinalDecision)
	}
}

func TestBatchProcessor_UnparseableRowBecomesErrorRow(t *testing.T) {
	evaluator := &mockEvaluator{}
	processor := NewBatchProcessor(evaluator, 0)

	good := testClaims("A", "C")
	claims := []ingest.Claim{
		good[0],
		{Name: "Patient 2", Err: errors.New("read row 2: bare quote")},
		good[1],
	}

	results := processor.ProcessClaims(context.Background(), claims, nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].FinalDecision != model.DecisionError || results[1].Err == "" {
		t.Errorf("expected an error row for the bad source row, got %+v", results[1])
	}
	// The bad row never reaches the evaluator
	if len(evaluator.calls) != 2 || evaluator.calls[0] != "A" || evaluator.calls[1] != "C" {
		t.Errorf("expected only parseable claims evaluated, got %v", evaluator.calls)
	}
}

func TestBatchProcessor_CancellationKeepsCompleted(t *testing.T) {
	evaluator := &mockEvaluator{}
	processor := NewBatchProcessor(evaluator, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var results []*model.ClaimResult
	done := make(chan struct{})
	go func() {
		results = processor.ProcessClaims(ctx, testClaims("A", "B", "C"), func(done, total int, r *model.ClaimResult) {
			if done == 1 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("batch did not stop after cancellation")
	}

	if len(results) == 0 {
		t.Fatal("expected completed claims to be kept after stop")
	}
	if len(results) == 3 {
		t.Error("expected the batch to stop before finishing all claims")
	}
	if results[0].CaseID != "A" {
		t.Errorf("expected first completed claim kept, got %s", results[0].CaseID)
	}
}

func TestBatchProcessor_Progress(t *testing.T) {
	evaluator := &mockEvaluator{}
	processor := NewBatchProcessor(evaluator, 0)

	var seen []int
	processor.ProcessClaims(context.Background(), testClaims("A", "B"), func(done, total int, r *model.ClaimResult) {
		if total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
		seen = append(seen, done)
	})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected progress 1,2 got %v", seen)
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	content := "Name,Diagnosis,Prescribed Medication\nAli,Fever,Paracetamol\nSara,Piles,Daflon\n"

	tmpfile, err := os.CreateTemp("", "claims*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	evaluator := &mockEvaluator{}
	processor := NewBatchProcessor(evaluator, 0)

	results, err := processor.ProcessFile(context.Background(), tmpfile.Name(), nil)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].CaseID != "Ali" || results[1].CaseID != "Sara" {
		t.Errorf("expected named cases, got %s and %s", results[0].CaseID, results[1].CaseID)
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockEvaluator{}, 0)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.csv", nil)
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
