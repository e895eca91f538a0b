// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"testing"

	"github.com/pdiddy/answer-engine/pkg/types"
)

func TestRerankOrdersByLexicalOverlap(t *testing.T) {
	candidates := []types.ArticleResult{
		{PMID: "1", Abstract: "Blood pressure medication dosing in elderly patients."},
		{PMID: "2", Abstract: "Statin therapy reduces cardiovascular events and mortality. Statin treatment works."},
		{PMID: "3", Abstract: "Dietary fiber intake and gut microbiome composition."},
	}

	ranked := rerank(candidates, "Do statins reduce cardiovascular mortality?", 2)

	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	if ranked[0].PMID != "2" {
		t.Errorf("ranked[0].PMID = %q, want 2", ranked[0].PMID)
	}
}

func TestRerankStableTies(t *testing.T) {
	// No candidate shares a term with the question: all scores are zero
	// and the input order must survive.
	candidates := []types.ArticleResult{
		{PMID: "a", Abstract: "alpha"},
		{PMID: "b", Abstract: "beta"},
		{PMID: "c", Abstract: "gamma"},
	}

	ranked := rerank(candidates, "unrelated question", 3)
	for i, want := range []string{"a", "b", "c"} {
		if ranked[i].PMID != want {
			t.Errorf("ranked[%d].PMID = %q, want %q", i, ranked[i].PMID, want)
		}
	}
}

func TestRerankDoesNotMutateInput(t *testing.T) {
	candidates := []types.ArticleResult{
		{PMID: "1", Abstract: "statin statin statin", Summary: "s1"},
		{PMID: "2", Abstract: "unrelated", Summary: "s2"},
	}

	_ = rerank(candidates, "statin", 1)

	if candidates[0].PMID != "1" || candidates[1].PMID != "2" {
		t.Error("input slice order changed")
	}
	if candidates[0].Summary != "s1" || candidates[1].Summary != "s2" {
		t.Error("input content changed")
	}
}

func TestRerankTopNLargerThanInput(t *testing.T) {
	candidates := []types.ArticleResult{{PMID: "1", Abstract: "one"}}
	ranked := rerank(candidates, "one", 20)
	if len(ranked) != 1 {
		t.Errorf("len(ranked) = %d, want 1", len(ranked))
	}
}

func TestTokenizeStems(t *testing.T) {
	tokens := tokenize("Reduces cardiovascular events, reducing mortality!")
	// "reduces" and "reducing" stem to the same token.
	counts := make(map[string]int)
	for _, tok := range tokens {
		counts[tok]++
	}
	for _, n := range counts {
		if n == 2 {
			return
		}
	}
	t.Errorf("expected a shared stem in %v", tokens)
}
