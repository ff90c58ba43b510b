package retrieval

import (
	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/lexical"
)

// Monitor provides hooks to observe candidate generation.
// Implement this interface to trace intermediate results.
type Monitor interface {
	Start(kind core.EntityKind, id core.ID)
	AfterANN(matches []core.SimilarityMatch)
	AfterLexical(query string, hits []lexical.Hit)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.EntityKind, _ core.ID)     {}
func (n *noopMonitor) AfterANN(_ []core.SimilarityMatch)      {}
func (n *noopMonitor) AfterLexical(_ string, _ []lexical.Hit) {}
func (n *noopMonitor) Finish(_ *Result)                       {}
