package evaluate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/insuragent/claimcheck/internal/logging"
	"github.com/insuragent/claimcheck/internal/model"
	"github.com/insuragent/claimcheck/internal/oracle"
	"github.com/insuragent/claimcheck/internal/worker"
)

// maxFlagRecommendations caps alternatives per clinical flag
const maxFlagRecommendations = 3

// Checker runs the cross-field clinical coherence check. One oracle call per
// claim; the reply either raises flags for a single field or states the clean
// sentence.
type Checker struct {
	oracle  oracle.Oracle
	limiter *worker.Limiter
	log     zerolog.Logger
}

// NewChecker creates a clinical coherence checker
func NewChecker(o oracle.Oracle, limiter *worker.Limiter) *Checker {
	return &Checker{
		oracle:  o,
		limiter: limiter,
		log:     logging.Component("clinical_checker"),
	}
}

// Check runs the coherence check across all submitted fields.
// Without a diagnosis, or with nothing to compare it against, there is no
// coherence question to ask and the check is skipped. Oracle failures degrade
// to no flags; the claim still scores on policy results alone.
func (c *Checker) Check(ctx context.Context, fields model.ClaimFields, policyContext string) []model.ClinicalFlag {
	if fields.Diagnosis == "" || !hasComparableField(fields) {
		return nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.oracle.Name()); err != nil {
			c.logFailure(err)
			return nil
		}
	}

	reply, err := c.oracle.Classify(ctx, oracle.ClassifyRequest{
		System:      clinicalSystemPrompt,
		Prompt:      clinicalUserPrompt(fields, policyContext),
		Temperature: 0,
	})
	if err != nil {
		c.logFailure(err)
		return nil
	}

	flags := parseClinicalReply(reply)
	if len(flags) == 0 {
		return nil
	}

	flags = selectPriorityFlags(flags)
	for i := range flags {
		flags[i].Recommendations = c.ensureAlternatives(ctx, fields, flags[i])
	}
	return flags
}

// CheckItem regenerates the alternatives for one already-flagged item without
// re-running the coherence check. The flag identity (field, item) is fixed;
// only the alternatives list is fresh.
func (c *Checker) CheckItem(ctx context.Context, fields model.ClaimFields, flaggedField, flaggedItem string) ([]string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.oracle.Name()); err != nil {
			return nil, err
		}
	}

	recs, err := c.oracle.Suggest(ctx, oracle.SuggestRequest{
		System: suggestSystemPrompt,
		Prompt: clinicalAlternativesPrompt(fields, flaggedField, flaggedItem, maxFlagRecommendations),
		Max:    maxFlagRecommendations,
	})
	if err != nil {
		return nil, err
	}
	if len(recs) > maxFlagRecommendations {
		recs = recs[:maxFlagRecommendations]
	}
	return recs, nil
}

// ensureAlternatives backfills alternatives when the checker's reply flagged
// an item but listed none
func (c *Checker) ensureAlternatives(ctx context.Context, fields model.ClaimFields, flag model.ClinicalFlag) []string {
	if len(flag.Recommendations) > 0 {
		if len(flag.Recommendations) > maxFlagRecommendations {
			return flag.Recommendations[:maxFlagRecommendations]
		}
		return flag.Recommendations
	}

	recs, err := c.CheckItem(ctx, fields, flag.Field, flag.FlaggedItem)
	if err != nil {
		c.logFailure(err)
		return nil
	}
	return recs
}

func (c *Checker) logFailure(err error) {
	event := "oracle_unavailable"
	if oracle.IsTimeout(err) {
		event = "oracle_timeout"
	}
	c.log.Error().Err(err).Str("event", event).Msg("clinical check skipped, no flags raised")
}

// hasComparableField reports whether any non-diagnosis field carries a value
func hasComparableField(fields model.ClaimFields) bool {
	for _, f := range model.FieldOrder {
		if f == model.FieldDiagnosis {
			continue
		}
		if fields.Value(f) != "" {
			return true
		}
	}
	return false
}
