package mail

import "github.com/kailas-cloud/mailsense/internal/db"

const (
	// subject outweighs body in BM25 scoring
	subjectWeight = 2
	indexLanguage = "english"
)

// buildIndex creates the mail index definition. The vector field is added only
// when an embedding dimension is known.
func buildIndex(vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Language(indexLanguage).
		TextNoStem(fieldFrom).
		TextNoStem(fieldFromNorm).
		Text(fieldSubject, subjectWeight).
		Text(fieldBody, 0).
		Tag(fieldCategory).
		Numeric(fieldImportance, false).
		Numeric(fieldDateTS, true)

	if vectorDim > 0 {
		b = b.VectorHNSW(fieldVector, vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct)
	}
	return b.Build()
}
