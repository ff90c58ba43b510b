package indexing

import "errors"

var (
	// ErrInvalidMaxAttempts is returned by a Backoff without attempts.
	ErrInvalidMaxAttempts = errors.New("retry attempts must be greater than 0")

	// ErrRepositoryRequired is returned when a repository dependency is nil.
	ErrRepositoryRequired = errors.New("repository is required")

	// ErrEmbedderRequired is returned when the embedder is nil.
	ErrEmbedderRequired = errors.New("embedder is required")
)
