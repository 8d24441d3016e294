package evaluate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insuragent/claimcheck/internal/index"
	"github.com/insuragent/claimcheck/internal/logging"
	"github.com/insuragent/claimcheck/internal/model"
	"github.com/insuragent/claimcheck/internal/oracle"
	"github.com/insuragent/claimcheck/internal/worker"
)

// maxFieldRecommendations caps policy-exclusion alternatives per field
const maxFieldRecommendations = 2

// FieldEvaluator evaluates one claim field against the policy-exclusion index
// and the oracle. The index and oracle are injected, constructed once at
// process start.
type FieldEvaluator struct {
	index     *index.Index
	oracle    oracle.Oracle
	limiter   *worker.Limiter
	threshold float64
	topK      int
	log       zerolog.Logger
}

// NewFieldEvaluator creates a field evaluator
func NewFieldEvaluator(idx *index.Index, o oracle.Oracle, limiter *worker.Limiter, threshold float64, topK int) *FieldEvaluator {
	if threshold <= 0 {
		threshold = 0.3
	}
	if topK <= 0 {
		topK = 3
	}
	return &FieldEvaluator{
		index:     idx,
		oracle:    o,
		limiter:   limiter,
		threshold: threshold,
		topK:      topK,
		log:       logging.Component("field_evaluator"),
	}
}

// Evaluate evaluates a single non-empty field value.
// Empty values must be skipped by the caller: an absent field produces no
// FieldResult at all.
func (e *FieldEvaluator) Evaluate(ctx context.Context, field model.FieldName, value string, fields model.ClaimFields) model.FieldResult {
	result := model.FieldResult{
		Field:           field,
		Value:           value,
		Decision:        model.DecisionAllowed,
		PolicySource:    "None",
		Recommendations: []string{},
	}

	// 1. Retrieve the most relevant policy clause. Pharmacy values get
	// retrieval-only brand typo normalization; the stored value keeps the
	// user's spelling.
	searchValue := value
	if field == model.FieldPharmacy {
		searchValue = normalizeBrandName(value)
	}
	query := fmt.Sprintf("%s: %s", field, searchValue)

	match, ok, err := e.index.Best(ctx, query)
	if err != nil {
		e.log.Error().Err(err).Str("field", string(field)).Msg("retrieval failed")
		result.Explanation = "Policy retrieval failed; defaulted to Allowed."
		result.FallbackUsed = true
		return result
	}
	if !ok || match.Score < e.threshold {
		// Below threshold means no relevant policy, not an error
		e.log.Debug().
			Str("event", "retrieval_miss").
			Str("field", string(field)).
			Float64("score", match.Score).
			Msg("no policy clause cleared the similarity threshold")
		result.Explanation = "No exclusion matched."
		return result
	}

	clause := match.Snippet.Text
	result.PolicySource = match.Snippet.Source

	// 2. Ask the oracle whether the clause excludes the value
	reply, err := e.classify(ctx, fieldPrompt(field, clause, value))
	if err != nil {
		// Oracle failure degrades this field, never the claim
		e.logOracleFailure(field, err)
		result.Explanation = "Policy oracle unavailable; defaulted to Allowed."
		result.FallbackUsed = true
		return result
	}

	decision, recognized := parseDecision(reply)
	if !recognized {
		// Data-quality signal only; the deterministic fallback already decided
		e.log.Warn().
			Str("event", "malformed_reply").
			Str("field", string(field)).
			Str("reply", truncate(reply, 120)).
			Msg("oracle reply matched no known decision phrase")
	}
	result.Decision = decision
	result.Explanation = reply

	// 3. Alternatives, only for exclusions
	if decision == model.DecisionExcluded {
		recs, fallback := e.recommend(ctx, field, value, reply, clause, fields)
		result.Recommendations = recs
		result.FallbackUsed = fallback
	}

	return result
}

// Recommendations regenerates the alternatives list for an excluded field.
// Idempotent and side-effect-free: the caller owns merging the fresh list
// into its own state.
func (e *FieldEvaluator) Recommendations(ctx context.Context, field model.FieldName, value, explanation string, fields model.ClaimFields) ([]string, error) {
	searchValue := value
	if field == model.FieldPharmacy {
		searchValue = normalizeBrandName(value)
	}

	clause := ""
	if match, ok, err := e.index.Best(ctx, fmt.Sprintf("%s: %s", field, searchValue)); err == nil && ok && match.Score >= e.threshold {
		clause = match.Snippet.Text
	}

	recs, _ := e.recommend(ctx, field, value, explanation, clause, fields)
	return recs, nil
}

// recommend produces up to two diagnosis-aware alternatives: rule-based
// extraction from the matched clause first, oracle suggestion second, generic
// per-field fallback when the oracle is down.
func (e *FieldEvaluator) recommend(ctx context.Context, field model.FieldName, value, explanation, clause string, fields model.ClaimFields) (recs []string, fallback bool) {
	if extracted := extractPolicyAlternatives(field, value, clause, fields.Diagnosis); len(extracted) > 0 {
		return cap2(extracted), false
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, e.oracle.Name()); err != nil {
			return fallbackRecommendations(field), true
		}
	}

	suggestions, err := e.oracle.Suggest(ctx, oracle.SuggestRequest{
		System: suggestSystemPrompt,
		Prompt: policyAlternativesPrompt(field, value, explanation, fields, maxFieldRecommendations),
		Max:    maxFieldRecommendations,
	})
	if err != nil || len(suggestions) == 0 {
		if err != nil {
			e.logOracleFailure(field, err)
		}
		return fallbackRecommendations(field), true
	}

	return cap2(suggestions), false
}

func (e *FieldEvaluator) classify(ctx context.Context, prompt string) (string, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, e.oracle.Name()); err != nil {
			return "", err
		}
	}
	return e.oracle.Classify(ctx, oracle.ClassifyRequest{
		Prompt:      prompt,
		Temperature: 0,
	})
}

func (e *FieldEvaluator) logOracleFailure(field model.FieldName, err error) {
	event := "oracle_unavailable"
	if oracle.IsTimeout(err) {
		event = "oracle_timeout"
	}
	e.log.Error().Err(err).Str("event", event).Str("field", string(field)).Msg("oracle call failed")
}

// brandTypos maps frequent brand misspellings to the formulary spelling.
// Retrieval-only: decisions still see the submitted text.
var brandTypos = map[string]string{
	"penadol": "panadol",
}

func normalizeBrandName(value string) string {
	lowered := strings.ToLower(value)
	for wrong, right := range brandTypos {
		lowered = strings.ReplaceAll(lowered, wrong, right)
	}
	return lowered
}

func cap2(recs []string) []string {
	if len(recs) > maxFieldRecommendations {
		return recs[:maxFieldRecommendations]
	}
	return recs
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
