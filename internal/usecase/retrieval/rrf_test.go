package retrieval

import (
	"math"
	"testing"

	"github.com/kailas-cloud/mailsense/internal/domain/mail"
)

func cite(ids ...string) []mail.Citation {
	out := make([]mail.Citation, len(ids))
	for i, id := range ids {
		out[i] = mail.Citation{ID: id, Subject: "subject-" + id}
	}
	return out
}

func ids(cs []mail.Citation) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestFuseRRF_DisjointListsInterleave(t *testing.T) {
	got := ids(fuseRRF(cite("a", "b"), cite("c", "d"), 10))
	want := []string{"a", "c", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFuseRRF_OverlapRanksFirst(t *testing.T) {
	results := fuseRRF(cite("a", "b", "c"), cite("b", "d", "a"), 10)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	// "b": 1/62 + 1/61 beats "a": 1/61 + 1/63
	if results[0].ID != "b" || results[1].ID != "a" {
		t.Errorf("unexpected order %v", ids(results))
	}
}

func TestFuseRRF_EmptyInputs(t *testing.T) {
	if got := fuseRRF(nil, nil, 10); len(got) != 0 {
		t.Fatalf("expected 0 results, got %d", len(got))
	}
	if got := fuseRRF(nil, cite("a"), 10); len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got := fuseRRF(cite("a"), nil, 10); len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
}

func TestFuseRRF_TopKLimiting(t *testing.T) {
	if got := fuseRRF(cite("a", "b", "c"), cite("d", "e", "f"), 3); len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestFuseRRF_ScoreFormula(t *testing.T) {
	results := fuseRRF(cite("a"), cite("a"), 10)
	// rank 0 in both: 1/(60+1) + 1/(60+1) = 2/61
	expected := 2.0 / 61.0
	if math.Abs(results[0].Score-expected) > 1e-10 {
		t.Errorf("expected score %f, got %f", expected, results[0].Score)
	}
	if results[0].Subject != "subject-a" {
		t.Errorf("citation fields must be preserved, got %+v", results[0])
	}
}
