package consolidate

import (
	"strings"

	"github.com/insuragent/claimcheck/internal/model"
)

// Consolidator merges policy exclusions and clinical flags into one
// deduplicated recommendation list. Both presentation surfaces go through it;
// there is no second dedup path.
type Consolidator struct{}

// NewConsolidator creates a consolidator
func NewConsolidator() *Consolidator {
	return &Consolidator{}
}

// Consolidate builds the unified recommendation list for a claim.
// Policy exclusions always survive. A clinical flag is suppressed when a
// policy exclusion already covers the same field or the same item text: the
// exclusion's alternatives subsume the clinical concern, and showing both
// would double-count one problem. Only exclusions that carry alternatives
// form recommendation units; a bare exclusion neither emits nor suppresses.
// Output follows canonical field order, exclusions before flags.
func (c *Consolidator) Consolidate(fieldResults []model.FieldResult, flags []model.ClinicalFlag) []model.UnifiedRecommendation {
	var out []model.UnifiedRecommendation

	exclusions := make([]*model.FieldResult, 0, len(fieldResults))
	for _, field := range model.FieldOrder {
		for i := range fieldResults {
			fr := &fieldResults[i]
			if fr.Field != field || fr.Decision != model.DecisionExcluded || len(fr.Recommendations) == 0 {
				continue
			}
			exclusions = append(exclusions, fr)
			out = append(out, model.UnifiedRecommendation{
				Kind:        model.KindPolicyExclusion,
				FieldResult: fr,
			})
		}
	}

	merged := mergeFlags(flags)
	for _, flag := range merged {
		if suppressedByExclusion(flag, exclusions) {
			continue
		}
		f := flag
		out = append(out, model.UnifiedRecommendation{
			Kind: model.KindClinicalLogic,
			Flag: &f,
		})
	}

	return out
}

// mergeFlags collapses per-item flags for the same field into one flag:
// flagged items comma-joined, alternatives deduplicated and capped at 3.
// Field order of the merged output follows canonical order, unknown labels
// last in first-seen order.
func mergeFlags(flags []model.ClinicalFlag) []model.ClinicalFlag {
	if len(flags) == 0 {
		return nil
	}

	byField := make(map[string]*model.ClinicalFlag)
	var order []string

	for _, flag := range flags {
		key := canonicalLabel(flag.Field)
		existing, ok := byField[key]
		if !ok {
			f := flag
			f.Field = key
			byField[key] = &f
			order = append(order, key)
			continue
		}
		if flag.FlaggedItem != "" {
			existing.FlaggedItem = joinItems(existing.FlaggedItem, flag.FlaggedItem)
		}
		existing.Recommendations = append(existing.Recommendations, flag.Recommendations...)
		if existing.Reasoning == "" {
			existing.Reasoning = flag.Reasoning
		}
	}

	sortCanonical(order)

	merged := make([]model.ClinicalFlag, 0, len(order))
	for _, key := range order {
		f := byField[key]
		f.Recommendations = dedupe(f.Recommendations, 3)
		merged = append(merged, *f)
	}
	return merged
}

// suppressedByExclusion reports whether a policy exclusion already covers a
// clinical flag. Field labels match alias-aware first, then by bidirectional
// case-insensitive substring so free-form labels like "Pharmacy items" still
// match "pharmacy". The flagged-item text is compared against the excluded
// value the same way, which catches labels outside the alias table entirely
// ("supplement" flagging an item the policy already excluded).
func suppressedByExclusion(flag model.ClinicalFlag, exclusions []*model.FieldResult) bool {
	for _, fr := range exclusions {
		if model.SameField(flag.Field, string(fr.Field)) {
			return true
		}
		if containsEither(flag.Field, string(fr.Field)) {
			return true
		}
		if containsEither(flag.FlaggedItem, fr.Value) {
			return true
		}
	}
	return false
}

func containsEither(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}

func canonicalLabel(label string) string {
	if canonical, ok := model.CanonicalField(label); ok {
		return string(canonical)
	}
	return strings.ToLower(strings.TrimSpace(label))
}

// sortCanonical reorders field labels into canonical field order, leaving
// unknown labels after the known ones in their existing order
func sortCanonical(labels []string) {
	rank := func(label string) int {
		for i, f := range model.FieldOrder {
			if string(f) == label {
				return i
			}
		}
		return len(model.FieldOrder)
	}

	// Insertion sort keeps it stable for equal ranks
	for i := 1; i < len(labels); i++ {
		for j := i; j > 0 && rank(labels[j]) < rank(labels[j-1]); j-- {
			labels[j], labels[j-1] = labels[j-1], labels[j]
		}
	}
}

func joinItems(existing, item string) string {
	if existing == "" {
		return item
	}
	for _, part := range strings.Split(existing, ", ") {
		if strings.EqualFold(strings.TrimSpace(part), strings.TrimSpace(item)) {
			return existing
		}
	}
	return existing + ", " + item
}

func dedupe(items []string, max int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == max {
			break
		}
	}
	return out
}
