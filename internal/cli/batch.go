package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insuragent/claimcheck/internal/model"
	"github.com/insuragent/claimcheck/internal/pipeline"
	"github.com/insuragent/claimcheck/internal/worker"
)

var (
	outputDir    string
	batchTimeout time.Duration
	claimPause   time.Duration
	// noFooter is defined in evaluate.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate multiple claims from a CSV table",
	Long: `Batch evaluates a claim table one claim at a time:
- Read claims from a CSV file; columns are matched by field aliases
  (e.g. "Prescribed Medication", "Lab/Investigations", "Dx")
- Evaluate claims sequentially with a pause between claims
- A failed claim becomes an Error row; the batch continues
- Ctrl-C stops before the next claim; completed results are kept
- Generate individual reports for each claim

Example:
  claimcheck batch claims.csv
  claimcheck batch claims.csv --output-dir ./reports --pause 2s
  claimcheck batch claims.csv --oracle openai --oracle-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimcheck-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&claimPause, "pause", time.Second, "pause between claims")

	addOracleFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	// Ctrl-C stops before the next claim; completed results still render
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintf(os.Stderr, "\nStopping after the current claim...\n")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Claimcheck Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Oracle:       %s\n", displayProvider(oracleProvider))
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Pause:        %v\n", claimPause)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(p, claimPause)
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	fmt.Fprintf(os.Stderr, "⚙️  Reading claims from file...\n\n")

	results, err := processor.ProcessFile(ctx, file, func(done, total int, result *model.ClaimResult) {
		if result.FinalDecision == model.DecisionError {
			fmt.Fprintf(os.Stderr, "✗ [%d/%d] %s: %s\n", done, total, result.CaseID, result.Err)
			return
		}
		fmt.Fprintf(os.Stderr, "✓ [%d/%d] %s: %s (%d/100)\n",
			done, total, result.CaseID, result.FinalDecision, result.ApprovalScore)
	})
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	// Write per-claim reports; error rows get JSON only
	successCount := 0
	failureCount := 0
	for _, result := range results {
		slug := sanitizeFilename(result.CaseID)
		jsonPath := filepath.Join(outputDir, slug+".json")

		if err := renderer.RenderJSON(result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.CaseID, err)
			continue
		}
		if result.FinalDecision == model.DecisionError {
			failureCount++
			continue
		}
		successCount++

		mdPath := filepath.Join(outputDir, slug+".md")
		if err := renderer.RenderMarkdown(result, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.CaseID, err)
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Evaluated: %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename sanitizes a case name for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "claim"
	}
	return s
}
