package score

import (
	"github.com/insuragent/claimcheck/internal/model"
)

// Deduction sizes for the flat approval model. Both findings cost the same;
// a claim with one policy exclusion and one open clinical flag lands at 60.
const (
	BaseScore        = 100
	ExclusionPenalty = 20
	ClinicalPenalty  = 20
)

// Scorer computes the approval probability and the final decision for a claim
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate computes the approval score from the two claim-level findings.
// Flat deductions: having any excluded field costs 20, having any unresolved
// clinical flag costs another 20. Counts do not matter; three exclusions cost
// the same as one. Result is clamped to [0, 100].
func (s *Scorer) Calculate(hasExcluded, hasUnresolvedFlags bool) int {
	total := BaseScore

	if hasExcluded {
		total -= ExclusionPenalty
	}
	if hasUnresolvedFlags {
		total -= ClinicalPenalty
	}

	if total < 0 {
		total = 0
	}
	if total > BaseScore {
		total = BaseScore
	}
	return total
}

// Decide derives the final decision: Excluded when at least one field remains
// excluded, Allowed otherwise. Clinical flags lower the score but never flip
// the decision on their own.
func (s *Scorer) Decide(fieldResults []model.FieldResult) model.Decision {
	for i := range fieldResults {
		if fieldResults[i].Decision == model.DecisionExcluded {
			return model.DecisionExcluded
		}
	}
	return model.DecisionAllowed
}

// Rescore recomputes the decision and score in place after an apply action.
// Callers mutate the result (flip a field, resolve a flag) and then invoke
// Rescore explicitly; nothing rescored implicitly.
func (s *Scorer) Rescore(r *model.ClaimResult) {
	r.FinalDecision = s.Decide(r.FieldResults)
	r.ApprovalScore = s.Calculate(r.HasExcludedField(), r.HasUnresolvedFlags())
}
