package model

import "time"

// Decision is the coverage outcome for a field or a whole claim
type Decision string

const (
	DecisionAllowed  Decision = "Allowed"
	DecisionExcluded Decision = "Excluded"
	DecisionError    Decision = "Error" // Batch rows only: the claim could not be evaluated
)

// FieldResult is the policy evaluation outcome for one submitted field.
// It is immutable once produced, except that a regenerate request replaces
// Recommendations and an apply action flips Decision to Allowed with an
// applied marker.
type FieldResult struct {
	Field           FieldName `json:"field"`
	Value           string    `json:"value"`
	Decision        Decision  `json:"result"`
	Explanation     string    `json:"explanation"`
	PolicySource    string    `json:"policy_source"`
	Recommendations []string  `json:"recommendations"` // ≤2 alternatives, only when Excluded

	Applied      bool   `json:"applied,omitempty"`       // An alternative was applied by the user
	AppliedNote  string `json:"applied_note,omitempty"`  // First selected alternative (+N more selected)
	FallbackUsed bool   `json:"fallback_used,omitempty"` // Oracle failed; generic alternatives substituted
}

// ClinicalFlag marks one item judged clinically inappropriate for the diagnosis.
// FlaggedItem may be a single item out of a comma-separated field value.
// After consolidation, FlaggedItem is the comma-joined list of all flagged items
// for the field and Recommendations is deduplicated and capped at 3.
type ClinicalFlag struct {
	Field           string   `json:"flagged_field"`
	FlaggedItem     string   `json:"flagged_item"`
	Recommendations []string `json:"recommendations"` // ≤3 diagnosis-appropriate alternatives
	Reasoning       string   `json:"reasoning,omitempty"`

	Resolved bool `json:"resolved,omitempty"` // An alternative was applied by the user
}

// RecommendationKind discriminates the two sources of a unified recommendation
type RecommendationKind string

const (
	KindPolicyExclusion RecommendationKind = "policy_exclusion"
	KindClinicalLogic   RecommendationKind = "clinical_logic"
)

// UnifiedRecommendation is the presenter's output unit: either a policy
// exclusion (FieldResult set) or a clinical flag (Flag set), never both.
// No field appears as both kinds for one claim; policy exclusions win.
type UnifiedRecommendation struct {
	Kind        RecommendationKind `json:"kind"`
	FieldResult *FieldResult       `json:"field_result,omitempty"`
	Flag        *ClinicalFlag      `json:"clinical_flag,omitempty"`
}

// Field returns the field label the recommendation refers to
func (u UnifiedRecommendation) Field() string {
	if u.Kind == KindPolicyExclusion && u.FieldResult != nil {
		return string(u.FieldResult.Field)
	}
	if u.Flag != nil {
		return u.Flag.Field
	}
	return ""
}

// ClaimResult is the aggregate outcome for one claim. It is built once per
// evaluation and mutated in place by apply actions (decision flip + rescore);
// it is never rebuilt by an apply or regenerate.
type ClaimResult struct {
	CaseID        string    `json:"case_id"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
	FinalDecision Decision  `json:"final_decision"`
	ApprovalScore int       `json:"approval_probability"` // 0-100, flat deduction model

	FieldResults  []FieldResult  `json:"field_breakdown"`
	ClinicalFlags []ClinicalFlag `json:"clinical_flags"`

	PolicySources []string `json:"policy_sources,omitempty"`
	Err           string   `json:"error,omitempty"` // Batch rows: why the claim evaluated to Error
}

// FieldResult returns the result for a field, or nil if the field was absent
func (r *ClaimResult) Result(f FieldName) *FieldResult {
	for i := range r.FieldResults {
		if r.FieldResults[i].Field == f {
			return &r.FieldResults[i]
		}
	}
	return nil
}

// HasExcludedField reports whether at least one field remains Excluded
func (r *ClaimResult) HasExcludedField() bool {
	for i := range r.FieldResults {
		if r.FieldResults[i].Decision == DecisionExcluded {
			return true
		}
	}
	return false
}

// HasUnresolvedFlags reports whether at least one clinical flag is unresolved
func (r *ClaimResult) HasUnresolvedFlags() bool {
	for i := range r.ClinicalFlags {
		if !r.ClinicalFlags[i].Resolved {
			return true
		}
	}
	return false
}
