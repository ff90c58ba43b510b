// Package retrieval builds the candidate set for one seeker or one offer.
//
// Candidates come from two sources. Dense retrieval ranks the other side's
// stored embeddings by cosine similarity to the entity's own embedding.
// Lexical retrieval runs a BM25 query built from the entity's text against
// an in-memory index. Lexical scores are normalized by the best lexical
// hit and blended into the dense similarity:
//
//	similarity = max(dense, 0.7*dense + 0.3*lexical/maxLexical)
//
// A lexical hit never lowers a dense similarity, and a lexical-only hit
// enters with a dense similarity of 0. Offer-side candidates are always
// restricted to open offers.
package retrieval
