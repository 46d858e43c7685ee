package retrieval

import (
	"sort"

	"github.com/kailas-cloud/mailsense/internal/domain/mail"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 citations via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// The first-seen copy of a citation is kept; its Score becomes the fused score.
func fuseRRF(knn, bm25 []mail.Citation, topK int) []mail.Citation {
	type scored struct {
		c     mail.Citation
		score float64
		order int
	}

	merged := make(map[string]*scored, len(knn)+len(bm25))
	add := func(list []mail.Citation) {
		for rank, c := range list {
			s := 1.0 / float64(rrfK+rank+1)
			if existing, ok := merged[c.ID]; ok {
				existing.score += s
				continue
			}
			merged[c.ID] = &scored{c: c, score: s, order: len(merged)}
		}
	}
	add(knn)
	add(bm25)

	all := make([]*scored, 0, len(merged))
	for _, s := range merged {
		all = append(all, s)
	}
	// equal scores keep first-seen order so output is deterministic
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].order < all[j].order
	})

	if len(all) > topK {
		all = all[:topK]
	}

	out := make([]mail.Citation, len(all))
	for i, s := range all {
		out[i] = s.c
		out[i].Score = s.score
	}
	return out
}
