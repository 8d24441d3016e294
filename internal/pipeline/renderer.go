package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/insuragent/claimcheck/internal/model"
)

// Renderer writes claim results as JSON, Markdown, and a stdout summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full result as indented JSON
func (r *Renderer) RenderJSON(result *model.ClaimResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(result *model.ClaimResult, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claim Evaluation: %s\n\n", result.CaseID)
	fmt.Fprintf(&b, "- **Decision:** %s\n", result.FinalDecision)
	fmt.Fprintf(&b, "- **Approval probability:** %d%%\n", result.ApprovalScore)
	fmt.Fprintf(&b, "- **Evaluated:** %s\n", result.EvaluatedAt.Format("2006-01-02 15:04 UTC"))
	if len(result.PolicySources) > 0 {
		fmt.Fprintf(&b, "- **Policy sources:** %s\n", strings.Join(result.PolicySources, ", "))
	}
	b.WriteString("\n## Field Breakdown\n\n")
	b.WriteString("| Field | Value | Result | Explanation |\n")
	b.WriteString("|-------|-------|--------|-------------|\n")
	for _, fr := range result.FieldResults {
		explanation := fr.Explanation
		if fr.Applied {
			explanation = fmt.Sprintf("Applied alternative: %s", fr.AppliedNote)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			fr.Field, mdEscape(fr.Value), fr.Decision, mdEscape(explanation))
	}

	if excluded := excludedResults(result); len(excluded) > 0 {
		b.WriteString("\n## Policy Exclusions\n\n")
		for _, fr := range excluded {
			fmt.Fprintf(&b, "### %s: %s\n\n", fr.Field, fr.Value)
			fmt.Fprintf(&b, "%s\n\n", fr.Explanation)
			if len(fr.Recommendations) > 0 {
				b.WriteString("Covered alternatives:\n\n")
				for _, rec := range fr.Recommendations {
					fmt.Fprintf(&b, "- %s\n", rec)
				}
				b.WriteString("\n")
			}
			if fr.FallbackUsed {
				b.WriteString("_Alternatives are generic fallbacks; the advisor was unavailable._\n\n")
			}
		}
	}

	if len(result.ClinicalFlags) > 0 {
		b.WriteString("\n## Clinical Flags\n\n")
		for _, flag := range result.ClinicalFlags {
			status := "pending"
			if flag.Resolved {
				status = "resolved"
			}
			fmt.Fprintf(&b, "### %s: %s (%s)\n\n", flag.Field, flag.FlaggedItem, status)
			if flag.Reasoning != "" {
				fmt.Fprintf(&b, "%s\n\n", flag.Reasoning)
			}
			for _, rec := range flag.Recommendations {
				fmt.Fprintf(&b, "- %s\n", rec)
			}
			b.WriteString("\n")
		}
	}

	if result.Err != "" {
		fmt.Fprintf(&b, "\n## Error\n\n%s\n", result.Err)
	}

	if r.includeFooter {
		b.WriteString("\n---\n_Generated by claimcheck. Decisions are advisory; final adjudication rests with the payer._\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderSummary prints a short stdout summary
func (r *Renderer) RenderSummary(result *model.ClaimResult) {
	fmt.Printf("\nCase:     %s\n", result.CaseID)
	fmt.Printf("Decision: %s\n", result.FinalDecision)
	fmt.Printf("Score:    %d/100\n", result.ApprovalScore)

	excluded := excludedResults(result)
	if len(excluded) == 0 && len(result.ClinicalFlags) == 0 {
		fmt.Println("No exclusions or clinical flags.")
		return
	}

	for _, fr := range excluded {
		fmt.Printf("  ✗ %s: %s\n", fr.Field, fr.Value)
		for _, rec := range fr.Recommendations {
			fmt.Printf("      → %s\n", rec)
		}
	}
	for _, flag := range result.ClinicalFlags {
		marker := "⚑"
		if flag.Resolved {
			marker = "✓"
		}
		fmt.Printf("  %s %s: %s\n", marker, flag.Field, flag.FlaggedItem)
		for _, rec := range flag.Recommendations {
			fmt.Printf("      → %s\n", rec)
		}
	}
}

func excludedResults(result *model.ClaimResult) []model.FieldResult {
	var out []model.FieldResult
	for _, fr := range result.FieldResults {
		if fr.Decision == model.DecisionExcluded {
			out = append(out, fr)
		}
	}
	return out
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
