package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed query or message.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals that the embedding token budget is spent.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbedderNotConfigured signals semantic retrieval without an embedding provider.
	ErrEmbedderNotConfigured = errors.New("embedder not configured")
	// ErrKeywordSearchNotSupported signals that the backend lacks keyword search.
	ErrKeywordSearchNotSupported = errors.New("keyword search not supported by backend")
	// ErrIndexUnavailable signals that the mail index cannot be reached or created.
	ErrIndexUnavailable = errors.New("mail index unavailable")
)
