package evaluate

import (
	"strings"

	"github.com/insuragent/claimcheck/internal/model"
)

// Known decision phrases scanned for in oracle replies. Exclusion phrasing
// takes precedence when both classes appear in one reply.
var (
	exclusionPhrases = []string{"not covered", "denied", "non-formulary", "not approved", "not payable"}
	inclusionPhrases = []string{"covered", "approved", "allowed", "payable"}
)

// parseDecision maps an oracle's free-text reply to a decision.
// Unparseable replies fall back to a literal "excluded" token check and
// default to Allowed; the caller logs those as a data-quality signal.
func parseDecision(reply string) (decision model.Decision, recognized bool) {
	lower := strings.ToLower(reply)

	for _, phrase := range exclusionPhrases {
		if strings.Contains(lower, phrase) {
			return model.DecisionExcluded, true
		}
	}
	for _, phrase := range inclusionPhrases {
		if strings.Contains(lower, phrase) {
			return model.DecisionAllowed, true
		}
	}

	if strings.Contains(lower, "excluded") {
		return model.DecisionExcluded, false
	}
	return model.DecisionAllowed, false
}

// parseClinicalReply parses the checker's block-format reply into raw flags.
// Blocks look like:
//
//	Field: Pharmacy
//	Flagged Item: levosiz-M
//	Alternatives:
//	<alt1>
//	<alt2>
//
// Field labels are free-form and normalized through the alias table.
func parseClinicalReply(reply string) []model.ClinicalFlag {
	if strings.Contains(reply, "No flags raised") || strings.Contains(reply, "clinically coherent") {
		return nil
	}

	var flags []model.ClinicalFlag
	var current *model.ClinicalFlag
	inAlternatives := false

	flush := func() {
		if current != nil && current.Field != "" && current.FlaggedItem != "" {
			if len(current.Recommendations) > 3 {
				current.Recommendations = current.Recommendations[:3]
			}
			flags = append(flags, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "Field:"):
			flush()
			label := strings.TrimSpace(strings.TrimPrefix(line, "Field:"))
			if canonical, ok := model.CanonicalField(label); ok {
				label = string(canonical)
			} else {
				label = strings.ToLower(label)
			}
			current = &model.ClinicalFlag{Field: label}
			inAlternatives = false

		case strings.HasPrefix(line, "Flagged Item:") && current != nil:
			current.FlaggedItem = strings.TrimSpace(strings.TrimPrefix(line, "Flagged Item:"))

		case strings.HasPrefix(strings.ToLower(line), "alternatives:") && current != nil:
			inAlternatives = true

		case current != nil && inAlternatives && line != "":
			rec := strings.TrimPrefix(line, "- ")
			if rec != "" {
				current.Recommendations = append(current.Recommendations, rec)
			}
		}
	}
	flush()

	return flags
}

// flagPriority is the fixed surfacing order for clinical flags: complaint and
// symptom mismatches outrank lab and medication mismatches. Deliberate product
// behavior; preserved as-is.
var flagPriority = []model.FieldName{
	model.FieldComplaint,
	model.FieldSymptoms,
	model.FieldLab,
	model.FieldPharmacy,
}

// selectPriorityFlags keeps only the flags of the single highest-priority
// flagged field. Multiple items within that field all survive; the
// consolidator merges them into one flag later.
func selectPriorityFlags(flags []model.ClinicalFlag) []model.ClinicalFlag {
	if len(flags) == 0 {
		return nil
	}

	byField := make(map[string][]model.ClinicalFlag)
	for _, f := range flags {
		byField[f.Field] = append(byField[f.Field], f)
	}

	for _, field := range flagPriority {
		if group, ok := byField[string(field)]; ok {
			return group
		}
	}

	// Unrecognized field label: surface the first group rather than dropping it
	return byField[flags[0].Field]
}
