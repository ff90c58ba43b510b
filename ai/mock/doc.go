// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without an embedding server while still
// producing vectors whose cosine similarity tracks shared vocabulary.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embedding, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Pin a vector for an exact text
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.Vectors = map[string][]float32{"query": {1, 0, 0}}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
package mock
