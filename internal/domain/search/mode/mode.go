package mode

// Mode is the retrieval strategy used to fetch candidate messages.
type Mode string

// Retrieval mode constants.
const (
	// Hybrid fuses semantic and keyword results with reciprocal rank fusion.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// NeedsEmbedding reports whether the mode requires a query vector.
func (m Mode) NeedsEmbedding() bool {
	return m == Hybrid || m == Semantic
}
