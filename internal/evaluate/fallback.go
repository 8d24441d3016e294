package evaluate

import "github.com/insuragent/claimcheck/internal/model"

// fallbackRecommendations returns the generic per-field alternatives used when
// the oracle cannot be reached. Always marked with FallbackUsed upstream so
// reviewers can tell them apart from diagnosis-aware suggestions.
func fallbackRecommendations(field model.FieldName) []string {
	switch field {
	case model.FieldPharmacy:
		return []string{
			"Substitute with a formulary-listed equivalent of the prescribed medication",
			"Resubmit with prior authorization and physician justification",
		}
	case model.FieldLab:
		return []string{
			"Order the standard covered panel for the stated diagnosis",
			"Resubmit with documented medical necessity for the test",
		}
	case model.FieldDiagnosis:
		return []string{
			"Verify the diagnosis code against the covered conditions list",
			"Attach specialist confirmation of the diagnosis",
		}
	default:
		return []string{
			"Resubmit with supporting clinical documentation",
		}
	}
}
