package lexical

import (
	"sync/atomic"

	"github.com/Soo0803/ternswipe-matcher/core"
)

// Searcher ranks documents against a free-text query.
type Searcher interface {
	Search(query string, limit int, filter func(core.ID) bool) []Hit
}

var (
	_ Searcher = (*Index)(nil)
	_ Searcher = (*Handle)(nil)
)

// Handle holds the current Index and lets a refresh swap it in without
// blocking readers. The zero value searches an empty index.
type Handle struct {
	current atomic.Pointer[Index]
}

// NewHandle creates a handle serving ix.
func NewHandle(ix *Index) *Handle {
	h := &Handle{}
	h.Swap(ix)
	return h
}

// Swap replaces the served index and returns the previous one.
func (h *Handle) Swap(ix *Index) *Index {
	return h.current.Swap(ix)
}

// Index returns the index currently served.
func (h *Handle) Index() *Index {
	return h.current.Load()
}

// Search delegates to the current index.
func (h *Handle) Search(query string, limit int, filter func(core.ID) bool) []Hit {
	return h.current.Load().Search(query, limit, filter)
}
