package worker

import (
	"context"
	"time"

	"github.com/insuragent/claimcheck/internal/ingest"
	"github.com/insuragent/claimcheck/internal/model"
)

// Evaluator defines the interface for evaluating one claim
type Evaluator interface {
	EvaluateClaim(ctx context.Context, caseID string, fields model.ClaimFields) (*model.ClaimResult, error)
}

// ProgressFunc is called after each claim completes
type ProgressFunc func(done, total int, result *model.ClaimResult)

// BatchProcessor evaluates claims from a table one at a time. Sequential on
// purpose: each claim already fans out internally, and reviewers read batch
// output claim by claim. A pause between claims keeps hosted oracles happy.
type BatchProcessor struct {
	evaluator Evaluator
	pause     time.Duration
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(evaluator Evaluator, pause time.Duration) *BatchProcessor {
	return &BatchProcessor{
		evaluator: evaluator,
		pause:     pause,
	}
}

// ProcessClaims evaluates claims in order. A failed claim or an unparseable
// source row becomes an Error row and the batch continues. Cancellation stops
// the batch; results completed so far are returned, never discarded.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []ingest.Claim, progress ProgressFunc) []*model.ClaimResult {
	results := make([]*model.ClaimResult, 0, len(claims))

	for i, claim := range claims {
		if ctx.Err() != nil {
			return results
		}

		var result *model.ClaimResult
		if claim.Err != nil {
			result = errorRow(claim.Name, claim.Err)
		} else {
			var err error
			result, err = b.evaluator.EvaluateClaim(ctx, claim.Name, claim.Fields)
			if err != nil {
				if ctx.Err() != nil {
					return results
				}
				result = errorRow(claim.Name, err)
			}
		}
		results = append(results, result)

		if progress != nil {
			progress(i+1, len(claims), result)
		}

		if b.pause > 0 && i < len(claims)-1 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(b.pause):
			}
		}
	}

	return results
}

func errorRow(caseID string, err error) *model.ClaimResult {
	return &model.ClaimResult{
		CaseID:        caseID,
		EvaluatedAt:   time.Now().UTC(),
		FinalDecision: model.DecisionError,
		Err:           err.Error(),
	}
}

// ProcessFile reads claims from a CSV file and evaluates them sequentially
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string, progress ProgressFunc) ([]*model.ClaimResult, error) {
	claims, err := ingest.ReadClaims(path)
	if err != nil {
		return nil, err
	}
	return b.ProcessClaims(ctx, claims, progress), nil
}
