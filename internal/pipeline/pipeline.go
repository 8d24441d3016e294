package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/insuragent/claimcheck/internal/consolidate"
	"github.com/insuragent/claimcheck/internal/embed"
	"github.com/insuragent/claimcheck/internal/evaluate"
	"github.com/insuragent/claimcheck/internal/index"
	"github.com/insuragent/claimcheck/internal/model"
	"github.com/insuragent/claimcheck/internal/oracle"
	"github.com/insuragent/claimcheck/internal/present"
	"github.com/insuragent/claimcheck/internal/score"
	"github.com/insuragent/claimcheck/internal/worker"
)

// ErrInvalidClaim rejects claims with no evaluable fields
var ErrInvalidClaim = errors.New("claim has no evaluable fields")

// Pipeline orchestrates the complete claim evaluation: field checks fanned
// out over a worker pool, one clinical coherence check, consolidation, and
// scoring. Built once per process and reused across claims.
type Pipeline struct {
	index        *index.Index
	evaluator    *evaluate.FieldEvaluator
	checker      *evaluate.Checker
	consolidator *consolidate.Consolidator
	scorer       *score.Scorer
	presenter    *present.Presenter
	renderer     *Renderer
	config       *model.Config
}

// NewPipeline creates a pipeline from configuration. The policy index is
// loaded eagerly; loading is idempotent so a retried startup never
// duplicates corpus entries.
func NewPipeline(ctx context.Context, cfg *model.Config) (*Pipeline, error) {
	o, err := oracle.New(oracle.ConfigFromModel(cfg.Oracle))
	if err != nil {
		return nil, fmt.Errorf("create oracle: %w", err)
	}
	if cfg.Cache.Enabled {
		o = oracle.NewCachedOracle(o, cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	if cfg.Cache.Enabled {
		embedder = embed.NewCachedEmbedder(embedder, cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	idx := index.New(embedder)
	snippets := index.BuiltinCorpus()
	if cfg.Index.CorpusPath != "" {
		snippets, err = index.LoadCorpusFile(cfg.Index.CorpusPath)
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
	}
	if err := idx.Load(ctx, snippets); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
	evaluator := evaluate.NewFieldEvaluator(idx, o, limiter, cfg.Index.Threshold, cfg.Index.TopK)
	checker := evaluate.NewChecker(o, limiter)

	return &Pipeline{
		index:        idx,
		evaluator:    evaluator,
		checker:      checker,
		consolidator: consolidate.NewConsolidator(),
		scorer:       score.NewScorer(),
		presenter:    present.NewPresenter(evaluator, checker),
		renderer:     NewRenderer(cfg.Output.IncludeFooter),
		config:       cfg,
	}, nil
}

func newEmbedder(cfg *model.Config) (embed.Embedder, error) {
	switch strings.ToLower(cfg.Index.Embedder) {
	case "openai":
		return embed.NewOpenAIEmbedder(cfg.Oracle.APIKey, cfg.Oracle.BaseURL, cfg.Oracle.Timeout)
	case "hash", "":
		return embed.NewHashEmbedder(0), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s (supported: openai, hash)", cfg.Index.Embedder)
	}
}

// Presenter returns the recommendation lifecycle handler bound to this
// pipeline's evaluator and checker
func (p *Pipeline) Presenter() *present.Presenter {
	return p.presenter
}

// EvaluateClaim evaluates one claim and builds the complete result.
// Field evaluations and the clinical check run concurrently; the join is
// deterministic regardless of completion order.
func (p *Pipeline) EvaluateClaim(ctx context.Context, caseID string, fields model.ClaimFields) (*model.ClaimResult, error) {
	if fields.IsEmpty() {
		return nil, fmt.Errorf("%w: case %s", ErrInvalidClaim, caseID)
	}

	// 1. Fan out one job per submitted field plus the clinical check.
	// The pool inherits the request context, so cancelling the claim
	// reaches in-flight oracle calls.
	pool := worker.NewPool(ctx, p.config.Concurrency.Workers)
	pool.Start()

	for _, field := range model.FieldOrder {
		value := fields.Value(field)
		if value == "" {
			continue
		}
		pool.Submit(&fieldJob{
			evaluator: p.evaluator,
			field:     field,
			value:     value,
			fields:    fields,
		})
	}
	pool.Submit(&clinicalJob{
		checker:       p.checker,
		fields:        fields,
		policyContext: p.policyContext(ctx, fields),
	})

	// 2. Join in canonical order
	byField := make(map[model.FieldName]model.FieldResult)
	var flags []model.ClinicalFlag
	for _, res := range pool.Wait() {
		switch r := res.(type) {
		case *fieldJobResult:
			byField[r.result.Field] = r.result
		case *clinicalJobResult:
			flags = r.flags
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("claim evaluation interrupted: %w", err)
	}

	var fieldResults []model.FieldResult
	for _, field := range model.FieldOrder {
		if fr, ok := byField[field]; ok {
			fieldResults = append(fieldResults, fr)
		}
	}

	// 3. Consolidate: policy exclusions suppress same-field clinical flags
	unified := p.consolidator.Consolidate(fieldResults, flags)
	flags = flags[:0]
	for _, rec := range unified {
		if rec.Kind == model.KindClinicalLogic {
			flags = append(flags, *rec.Flag)
		}
	}

	// 4. Score and decide
	result := &model.ClaimResult{
		CaseID:        caseID,
		EvaluatedAt:   time.Now().UTC(),
		FieldResults:  fieldResults,
		ClinicalFlags: flags,
		PolicySources: policySources(fieldResults),
	}
	p.scorer.Rescore(result)

	return result, nil
}

// policyContext retrieves the compliance clause fed to the clinical check.
// Missing context is fine; the check runs on the case alone.
func (p *Pipeline) policyContext(ctx context.Context, fields model.ClaimFields) string {
	query := fmt.Sprintf("prescription compliance diagnosis match: %s", fields.Diagnosis)
	match, ok, err := p.index.Best(ctx, query)
	if err != nil || !ok {
		return ""
	}
	return match.Snippet.Text
}

func policySources(fieldResults []model.FieldResult) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, fr := range fieldResults {
		if fr.PolicySource == "" || fr.PolicySource == "None" || seen[fr.PolicySource] {
			continue
		}
		seen[fr.PolicySource] = true
		sources = append(sources, fr.PolicySource)
	}
	return sources
}

// RenderResult renders the claim result to the configured outputs
func (p *Pipeline) RenderResult(result *model.ClaimResult, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stdout, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stdout, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(result)
	return nil
}

// fieldJob evaluates one field on the worker pool
type fieldJob struct {
	evaluator *evaluate.FieldEvaluator
	field     model.FieldName
	value     string
	fields    model.ClaimFields
}

func (j *fieldJob) Execute(ctx context.Context) worker.Result {
	return &fieldJobResult{result: j.evaluator.Evaluate(ctx, j.field, j.value, j.fields)}
}

type fieldJobResult struct {
	result model.FieldResult
}

func (r *fieldJobResult) GetError() error { return nil }

// clinicalJob runs the coherence check on the worker pool
type clinicalJob struct {
	checker       *evaluate.Checker
	fields        model.ClaimFields
	policyContext string
}

func (j *clinicalJob) Execute(ctx context.Context) worker.Result {
	return &clinicalJobResult{flags: j.checker.Check(ctx, j.fields, j.policyContext)}
}

type clinicalJobResult struct {
	flags []model.ClinicalFlag
}

func (r *clinicalJobResult) GetError() error { return nil }
