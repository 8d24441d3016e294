package present

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/insuragent/claimcheck/internal/consolidate"
	"github.com/insuragent/claimcheck/internal/evaluate"
	"github.com/insuragent/claimcheck/internal/model"
	"github.com/insuragent/claimcheck/internal/score"
)

var (
	// ErrAlreadyApplied rejects a second apply or a regenerate on an applied item
	ErrAlreadyApplied = errors.New("recommendation already applied")

	// ErrNotFound means the claim has no pending recommendation for the field
	ErrNotFound = errors.New("no recommendation for field")

	// ErrNothingSelected rejects an apply with an empty selection
	ErrNothingSelected = errors.New("no alternative selected")
)

// Presenter owns the post-evaluation lifecycle of recommendations: listing
// them, applying a selected alternative, and regenerating a pending list.
// Applies mutate the claim result in place and rescore it; nothing re-runs
// the evaluation pipeline.
type Presenter struct {
	scorer       *score.Scorer
	consolidator *consolidate.Consolidator
	evaluator    *evaluate.FieldEvaluator
	checker      *evaluate.Checker
}

// NewPresenter creates a presenter
func NewPresenter(evaluator *evaluate.FieldEvaluator, checker *evaluate.Checker) *Presenter {
	return &Presenter{
		scorer:       score.NewScorer(),
		consolidator: consolidate.NewConsolidator(),
		evaluator:    evaluator,
		checker:      checker,
	}
}

// Recommendations returns the unified pending recommendation list for a claim.
// Applied policy items and resolved flags drop out: an exclusion that was
// applied is no longer Excluded and an applied flag is Resolved.
func (p *Presenter) Recommendations(result *model.ClaimResult) []model.UnifiedRecommendation {
	flags := make([]model.ClinicalFlag, 0, len(result.ClinicalFlags))
	for _, f := range result.ClinicalFlags {
		if !f.Resolved {
			flags = append(flags, f)
		}
	}
	return p.consolidator.Consolidate(result.FieldResults, flags)
}

// ApplyPolicy applies selected alternatives to an excluded field: the field
// flips to Allowed, carries an applied marker naming the selection, and the
// claim is rescored.
func (p *Presenter) ApplyPolicy(result *model.ClaimResult, field model.FieldName, selected []string) error {
	if len(selected) == 0 {
		return ErrNothingSelected
	}

	fr := result.Result(field)
	if fr == nil || fr.Decision != model.DecisionExcluded {
		return fmt.Errorf("%w: %s", ErrNotFound, field)
	}
	if fr.Applied {
		return ErrAlreadyApplied
	}

	fr.Decision = model.DecisionAllowed
	fr.Applied = true
	fr.AppliedNote = appliedNote(selected)

	p.scorer.Rescore(result)
	return nil
}

// ApplyClinical resolves a clinical flag with the selected alternatives and
// rescores the claim. The flag stays in the result for audit, marked resolved.
func (p *Presenter) ApplyClinical(result *model.ClaimResult, field string, selected []string) error {
	if len(selected) == 0 {
		return ErrNothingSelected
	}

	flag := findFlag(result, field)
	if flag == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, field)
	}
	if flag.Resolved {
		return ErrAlreadyApplied
	}

	flag.Resolved = true
	flag.Reasoning = strings.TrimSpace(flag.Reasoning + " Resolved with: " + appliedNote(selected))

	p.scorer.Rescore(result)
	return nil
}

// RegeneratePolicy replaces the alternatives of a pending exclusion with a
// fresh list. The field's decision, explanation, and policy source are
// untouched; applied items cannot be regenerated.
func (p *Presenter) RegeneratePolicy(ctx context.Context, result *model.ClaimResult, fields model.ClaimFields, field model.FieldName) error {
	fr := result.Result(field)
	if fr == nil || fr.Decision != model.DecisionExcluded {
		return fmt.Errorf("%w: %s", ErrNotFound, field)
	}
	if fr.Applied {
		return ErrAlreadyApplied
	}

	recs, err := p.evaluator.Recommendations(ctx, field, fr.Value, fr.Explanation, fields)
	if err != nil {
		return err
	}
	fr.Recommendations = recs
	fr.FallbackUsed = false
	return nil
}

// RegenerateClinical replaces the alternatives of a pending clinical flag.
// The flag identity (field, flagged item) is preserved.
func (p *Presenter) RegenerateClinical(ctx context.Context, result *model.ClaimResult, fields model.ClaimFields, field string) error {
	flag := findFlag(result, field)
	if flag == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, field)
	}
	if flag.Resolved {
		return ErrAlreadyApplied
	}

	recs, err := p.checker.CheckItem(ctx, fields, flag.Field, flag.FlaggedItem)
	if err != nil {
		return err
	}
	flag.Recommendations = recs
	return nil
}

// appliedNote renders the applied marker: the first selection plus a count of
// any further ones
func appliedNote(selected []string) string {
	if len(selected) == 1 {
		return selected[0]
	}
	return fmt.Sprintf("%s (+%d more selected)", selected[0], len(selected)-1)
}

func findFlag(result *model.ClaimResult, field string) *model.ClinicalFlag {
	for i := range result.ClinicalFlags {
		if model.SameField(result.ClinicalFlags[i].Field, field) {
			return &result.ClinicalFlags[i]
		}
	}
	return nil
}
