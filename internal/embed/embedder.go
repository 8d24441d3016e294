package embed

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Embedder turns text into a vector for similarity search. Similarity is the
// embedder's own: dense model vectors compare by cosine, while the hash
// embedder uses query-term coverage so its scores land on the same 0-1 scale
// the retrieval threshold expects.
type Embedder interface {
	// Name returns the embedder name
	Name() string

	// Embed returns the embedding vector for a text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Similarity scores a query vector against a document vector on a 0-1 scale
	Similarity(query, doc []float32) float64
}

// HashEmbedder is a deterministic, in-process embedder: token and bigram
// features hashed into a fixed-width vector, L2-normalized. It trades semantic
// depth for zero external calls, which keeps retrieval usable offline and
// makes similarity scores reproducible in tests.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder with the given dimensionality.
// The default width keeps feature collisions rare for short policy clauses.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 4096
	}
	return &HashEmbedder{dim: dim}
}

// Name returns the embedder name
func (h *HashEmbedder) Name() string {
	return "hash"
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Embed returns the feature-hash vector for a text
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)

	vec := make([]float32, h.dim)
	add := func(feature string, weight float32) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(feature))
		vec[f.Sum32()%uint32(h.dim)] += weight
	}

	for i, tok := range tokens {
		add(tok, 1)
		if i > 0 {
			// Bigrams let multi-word terms ("vitamin d") count as one concept
			add(tokens[i-1]+" "+tok, 1)
		}
	}

	normalize(vec)
	return vec, nil
}

// Similarity scores how much of the query's feature mass the document covers.
// Plain cosine between a two-word query and a forty-word clause bottoms out
// near zero regardless of relevance; coverage keeps a single matched rare term
// above the retrieval threshold while unrelated clauses stay near zero.
func (h *HashEmbedder) Similarity(query, doc []float32) float64 {
	if len(query) != len(doc) || len(query) == 0 {
		return 0
	}
	var matched, total float64
	for i := range query {
		if query[i] <= 0 {
			continue
		}
		total += float64(query[i])
		if doc[i] > 0 {
			matched += float64(query[i])
		}
	}
	if total == 0 {
		return 0
	}
	return matched / total
}

// Cosine returns the cosine similarity of two vectors on a 0-1 scale
// (inputs are expected to be L2-normalized; negative products clamp to 0)
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if dot < 0 {
		return 0
	}
	return dot
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
