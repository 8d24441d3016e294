package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/insuragent/claimcheck/internal/embed"
)

// Snippet is one policy-exclusion clause held by the index
type Snippet struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"` // Policy source label, e.g. "FMC Insurance"
	Text   string `json:"text" yaml:"text"`
}

// Match is one retrieval result with its similarity score
type Match struct {
	Snippet Snippet
	Score   float64 // Cosine similarity on a 0-1 scale
}

// Index is an in-memory cosine-similarity index over the policy corpus.
// It is constructed once at process start and injected into the evaluators.
type Index struct {
	embedder embed.Embedder

	mu      sync.RWMutex
	ids     map[string]bool
	entries []entry
}

type entry struct {
	snippet Snippet
	vector  []float32
}

// New creates an empty index backed by the given embedder
func New(embedder embed.Embedder) *Index {
	return &Index{
		embedder: embedder,
		ids:      make(map[string]bool),
	}
}

// Add embeds and stores a snippet. Adding an ID that is already present is a
// no-op, not an error: re-initialization must never duplicate entries.
func (x *Index) Add(ctx context.Context, s Snippet) error {
	x.mu.RLock()
	present := x.ids[s.ID]
	x.mu.RUnlock()
	if present {
		return nil
	}

	vec, err := x.embedder.Embed(ctx, s.Text)
	if err != nil {
		return fmt.Errorf("embed snippet %s: %w", s.ID, err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ids[s.ID] {
		return nil
	}
	x.ids[s.ID] = true
	x.entries = append(x.entries, entry{snippet: s, vector: vec})
	return nil
}

// Load adds all snippets, skipping IDs already present
func (x *Index) Load(ctx context.Context, snippets []Snippet) error {
	for _, s := range snippets {
		if err := x.Add(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of stored snippets
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Search returns the topK most similar snippets for a query, best first
func (x *Index) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 3
	}

	qvec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]Match, 0, len(x.entries))
	for _, e := range x.entries {
		matches = append(matches, Match{
			Snippet: e.snippet,
			Score:   x.embedder.Similarity(qvec, e.vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Best returns the single most similar snippet, or ok=false on an empty index
func (x *Index) Best(ctx context.Context, query string) (Match, bool, error) {
	matches, err := x.Search(ctx, query, 1)
	if err != nil {
		return Match{}, false, err
	}
	if len(matches) == 0 {
		return Match{}, false, nil
	}
	return matches[0], true, nil
}
