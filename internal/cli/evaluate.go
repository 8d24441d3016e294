package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/insuragent/claimcheck/internal/model"
	"github.com/insuragent/claimcheck/internal/pipeline"
)

var (
	caseName  string
	complaint string
	symptoms  string
	diagnosis string
	lab       string
	pharmacy  string

	outJSON string
	outMD   string
	timeout time.Duration

	oracleProvider string
	oracleModel    string
	corpusPath     string
	embedderName   string
	noCache        bool
	noFooter       bool
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single claim against policy exclusions and clinical coherence",
	Long: `Evaluate runs one claim through the full evaluation:
- Each submitted field is checked against retrieved policy-exclusion clauses
- The claim as a whole is checked for clinical coherence with the diagnosis
- Excluded and flagged items get diagnosis-aware alternatives
- An approval probability is computed from the findings

Fields left empty are skipped entirely; they are neither penalized nor flagged.

Example:
  claimcheck evaluate --diagnosis "Acute Sinusitis" --complaint "Headache" --pharmacy "Panadol"
  claimcheck evaluate --diagnosis "Piles" --pharmacy "Daflon 500mg, levosiz-M" --json result.json
  claimcheck evaluate --diagnosis "Fever" --lab "Vitamin D" --oracle openai --oracle-model gpt-4o-mini`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	// Claim fields
	evaluateCmd.Flags().StringVar(&caseName, "case", "Patient 1", "case or patient name")
	evaluateCmd.Flags().StringVar(&complaint, "complaint", "", "chief complaint")
	evaluateCmd.Flags().StringVar(&symptoms, "symptoms", "", "reported symptoms")
	evaluateCmd.Flags().StringVar(&diagnosis, "diagnosis", "", "stated diagnosis")
	evaluateCmd.Flags().StringVar(&lab, "lab", "", "lab tests / investigations")
	evaluateCmd.Flags().StringVar(&pharmacy, "pharmacy", "", "prescribed medications (comma-separated)")

	// Output flags
	evaluateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	evaluateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	evaluateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall evaluation timeout")

	addOracleFlags(evaluateCmd)
}

// addOracleFlags registers the oracle and index flags shared by evaluate and
// batch
func addOracleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&oracleProvider, "oracle", "", "oracle provider (openai, ollama, scripted; default scripted)")
	cmd.Flags().StringVar(&oracleModel, "oracle-model", "", "oracle model name (provider-specific)")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "YAML policy corpus path (default: built-in corpus)")
	cmd.Flags().StringVar(&embedderName, "embedder", "", "retrieval embedder (hash, openai; default hash)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable reply and embedding caches")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

// buildConfig assembles the pipeline configuration from flags and environment
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Oracle.Provider = oracleProvider
	cfg.Oracle.Model = oracleModel
	cfg.Index.CorpusPath = corpusPath
	if embedderName != "" {
		cfg.Index.Embedder = embedderName
	}
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	switch oracleProvider {
	case "openai":
		cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Oracle.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Oracle.BaseURL = baseURL
		}
	}
	if cfg.Index.Embedder == "openai" && cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Oracle.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY required for the openai embedder")
		}
	}

	return cfg, nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fields := model.ClaimFields{
		Complaint: complaint,
		Symptoms:  symptoms,
		Diagnosis: diagnosis,
		Lab:       lab,
		Pharmacy:  pharmacy,
	}
	if fields.IsEmpty() {
		return fmt.Errorf("no claim fields provided; set at least one of --complaint, --symptoms, --diagnosis, --lab, --pharmacy")
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Evaluating: %s\n", caseName)
		fmt.Fprintf(os.Stderr, "Oracle: %s\n", displayProvider(oracleProvider))
		fmt.Fprintln(os.Stderr)
	}

	result, err := p.EvaluateClaim(ctx, caseName, fields)
	if err != nil {
		return fmt.Errorf("evaluate claim: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Evaluated %d fields\n", len(result.FieldResults))
		fmt.Fprintf(os.Stderr, "✓ Approval probability: %d/100\n", result.ApprovalScore)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderResult(result, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

func displayProvider(provider string) string {
	if provider == "" {
		return "scripted"
	}
	return provider
}
