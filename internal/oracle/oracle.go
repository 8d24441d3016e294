package oracle

import (
	"context"
	"errors"
	"strings"
)

// Oracle is the abstracted LLM capability used by the evaluators.
// Any implementation (hosted LLM, local model, rule engine) is substitutable,
// which also makes the evaluators testable with the scripted oracle.
type Oracle interface {
	// Name returns the provider name
	Name() string

	// Classify answers a classification prompt with a free-text reply.
	// Callers scan the reply for decision phrases; the oracle never returns
	// structured decisions itself.
	Classify(ctx context.Context, req ClassifyRequest) (string, error)

	// Suggest generates up to req.Max short alternative suggestions
	Suggest(ctx context.Context, req SuggestRequest) ([]string, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for a classification call
type ClassifyRequest struct {
	// System is the system instruction (may be empty)
	System string

	// Prompt is the user prompt
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// Temperature for the completion; classification runs cold
	Temperature float32
}

// SuggestRequest contains the input for a suggestion call
type SuggestRequest struct {
	// System is the system instruction (may be empty)
	System string

	// Prompt is the user prompt
	Prompt string

	// Max caps the number of returned suggestions
	Max int

	// Model overrides the configured model (provider-specific)
	Model string
}

// Config holds oracle provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "scripted", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout in seconds for a single call
	Timeout int

	// MaxTokens for suggestion generation
	MaxTokens int
}

// ErrUnavailable marks an oracle that cannot be reached or is misconfigured.
// Evaluators recover locally (generic alternatives, empty flag list) and never
// propagate it as a claim-level failure.
var ErrUnavailable = errors.New("oracle unavailable")

// IsTimeout reports whether an oracle error was a deadline expiry
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// ParseList extracts up to max suggestion lines from a free-text reply.
// Accepts "- item", "1. item" and bare lines; drops empties and duplicates.
func ParseList(text string, max int) []string {
	var items []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")

		// Strip "1." / "2)" style enumeration
		if len(line) > 2 && line[0] >= '0' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
			line = strings.TrimSpace(line[2:])
		}

		if len(line) < 4 {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, line)
		if max > 0 && len(items) >= max {
			break
		}
	}

	return items
}
