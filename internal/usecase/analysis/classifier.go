package analysis

import (
	"math"
	"strings"

	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

const (
	confidencePerMatch = 0.3
	maxConfidence      = 0.9
)

// Classify returns the best-scoring intent for text and its confidence.
// Each intent scores min(0.9, 0.3*m*m) where m is the number of its patterns
// matching the lowercased text. Equal scores keep the earlier catalogue intent.
// With no match the result is (general, 0).
func Classify(text string) (intent.Intent, float64) {
	lower := strings.ToLower(text)

	best, bestConfidence := intent.General, 0.0
	for _, ip := range catalogue {
		m := 0
		for _, p := range ip.patterns {
			if p.MatchString(lower) {
				m++
			}
		}
		if m == 0 {
			continue
		}
		// saturates at two matching patterns
		confidence := math.Min(maxConfidence, confidencePerMatch*float64(m)*float64(m))
		if confidence > bestConfidence {
			best, bestConfidence = ip.intent, confidence
		}
	}
	return best, bestConfidence
}
