// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"math"
	"sort"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// BM25 parameters: k1 controls term-frequency saturation, b controls
// document-length normalization.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// rerank scores each candidate's abstract against the question with
// BM25 and returns the top n by descending score, ties broken by input
// order. It copies the slice and never mutates the candidates.
func rerank(candidates []types.ArticleResult, question string, n int) []types.ArticleResult {
	docs := make([][]string, len(candidates))
	for i, c := range candidates {
		docs[i] = tokenize(c.Abstract)
	}

	scores := bm25Scores(docs, tokenize(question))

	ranked := make([]types.ArticleResult, len(candidates))
	copy(ranked, candidates)

	order := make([]int, len(ranked))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if n > len(order) {
		n = len(order)
	}
	top := make([]types.ArticleResult, n)
	for i := 0; i < n; i++ {
		top[i] = ranked[order[i]]
	}
	return top
}

// bm25Scores computes one BM25 score per document against the query
// terms.
func bm25Scores(docs [][]string, query []string) []float64 {
	// Document frequency per term and average document length.
	df := make(map[string]int)
	var totalLen int
	for _, doc := range docs {
		totalLen += len(doc)
		seen := make(map[string]bool)
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}
	avgLen := float64(totalLen) / float64(len(docs))
	if avgLen == 0 {
		avgLen = 1
	}

	scores := make([]float64, len(docs))
	for i, doc := range docs {
		tf := make(map[string]int)
		for _, term := range doc {
			tf[term]++
		}

		var score float64
		for _, term := range query {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			idf := math.Log(1 + (float64(len(docs))-float64(df[term])+0.5)/(float64(df[term])+0.5))
			norm := 1 - bm25B + bm25B*float64(len(doc))/avgLen
			score += idf * (f * (bm25K1 + 1)) / (f + bm25K1*norm)
		}
		scores[i] = score
	}
	return scores
}

// tokenize lowercases, splits on non-alphanumeric runes, and stems each
// token.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, snowballeng.Stem(w, false))
	}
	return tokens
}
