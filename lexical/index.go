package lexical

import (
	"math"
	"sort"

	"github.com/Soo0803/ternswipe-matcher/core"
)

const (
	// DefaultK1 controls term frequency saturation.
	DefaultK1 = 1.2
	// DefaultB controls document length normalization.
	DefaultB = 0.75
)

// Document is one indexed text.
type Document struct {
	ID   core.ID
	Text string
}

// Hit is one lexical search result.
type Hit struct {
	ID    core.ID
	Score float64
}

type posting struct {
	doc  int // Index into Index.ids
	freq int
}

// Index is an immutable in-memory BM25 index. Build it once with NewIndex
// and query it from any number of goroutines.
type Index struct {
	ids      []core.ID
	lengths  []int
	avgLen   float64
	postings map[string][]posting
	k1       float64
	b        float64
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithK1 overrides the term frequency saturation parameter.
func WithK1(k1 float64) IndexOption {
	return func(ix *Index) {
		if k1 > 0 {
			ix.k1 = k1
		}
	}
}

// WithB overrides the length normalization parameter.
func WithB(b float64) IndexOption {
	return func(ix *Index) {
		if b >= 0 && b <= 1 {
			ix.b = b
		}
	}
}

// NewIndex builds an index over docs. Later documents with a duplicate ID
// replace earlier ones.
func NewIndex(docs []Document, opts ...IndexOption) *Index {
	ix := &Index{
		postings: make(map[string][]posting),
		k1:       DefaultK1,
		b:        DefaultB,
	}
	for _, opt := range opts {
		opt(ix)
	}

	latest := make(map[core.ID]int, len(docs))
	for i, d := range docs {
		latest[d.ID] = i
	}

	totalLen := 0
	for i, d := range docs {
		if latest[d.ID] != i {
			continue
		}
		tokens := analyze(d.Text)
		docIdx := len(ix.ids)
		ix.ids = append(ix.ids, d.ID)
		ix.lengths = append(ix.lengths, len(tokens))
		totalLen += len(tokens)

		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for term, f := range freqs {
			ix.postings[term] = append(ix.postings[term], posting{doc: docIdx, freq: f})
		}
	}

	if len(ix.ids) > 0 {
		ix.avgLen = float64(totalLen) / float64(len(ix.ids))
	}
	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Search ranks documents matching any query term by BM25 relevance and
// returns at most limit hits, highest score first with ties broken by ID.
// Documents rejected by filter are skipped; a nil filter accepts all.
func (ix *Index) Search(query string, limit int, filter func(core.ID) bool) []Hit {
	if ix == nil || len(ix.ids) == 0 || limit <= 0 {
		return []Hit{}
	}

	terms := uniqueTerms(analyze(query))
	if len(terms) == 0 {
		return []Hit{}
	}

	n := float64(len(ix.ids))
	avgLen := math.Max(ix.avgLen, 1)
	scores := make(map[int]float64)

	for _, term := range terms {
		plist := ix.postings[term]
		if len(plist) == 0 {
			continue
		}
		df := float64(len(plist))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))

		for _, p := range plist {
			tf := float64(p.freq)
			norm := ix.k1 * (1 - ix.b + ix.b*float64(ix.lengths[p.doc])/avgLen)
			scores[p.doc] += idf * tf * (ix.k1 + 1) / (tf + norm)
		}
	}

	hits := make([]Hit, 0, len(scores))
	for doc, score := range scores {
		id := ix.ids[doc]
		if filter != nil && !filter(id) {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func uniqueTerms(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
