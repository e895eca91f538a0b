// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/pubmed"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// engineLLM scripts every pipeline stage for the end-to-end tests.
func engineLLM(req llm.Request) (string, error) {
	switch req.System {
	case "query-system":
		return "statins AND outcomes", nil
	case "relevance-system":
		if strings.Contains(req.User, "offtopic") {
			return "No.", nil
		}
		return "Yes.", nil
	case "summarization-system":
		return "A study summary.", nil
	case "synthesis-system":
		// Echo the source blocks so the test can see the numbering.
		return "Answer based on: " + req.User, nil
	default:
		return "", fmt.Errorf("unexpected system prompt %q", req.System)
	}
}

func testEngine(t *testing.T, search pubmed.Client) *Engine {
	t.Helper()
	cfg := types.Config{Pipeline: types.PipelineConfig{RetryCooldown: time.Millisecond}}
	return New(&stubLLM{generate: engineLLM}, search, nil, testCatalog(t), cfg, zap.NewNop())
}

func TestAnswerEndToEnd(t *testing.T) {
	search := &stubSearch{
		ids: []string{"1", "2"},
		records: []pubmed.Record{
			recordWithAbstract("1", "statin outcomes data"),
			recordWithAbstract("2", "offtopic study"),
		},
	}

	e := testEngine(t, search)
	result, err := e.Answer(context.Background(), "test question", AnswerOptions{IncludeArticles: true})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if len(result.ArticleSummaries) != 1 {
		t.Errorf("len(ArticleSummaries) = %d, want 1", len(result.ArticleSummaries))
	}
	if len(result.IrrelevantArticles) != 1 {
		t.Errorf("len(IrrelevantArticles) = %d, want 1", len(result.IrrelevantArticles))
	}
	if !strings.Contains(result.Synthesis, "[1] Source:") {
		t.Errorf("synthesis missing source marker: %q", result.Synthesis)
	}
	if len(result.Queries) != 1 || result.Queries[0] != "statins AND outcomes" {
		t.Errorf("Queries = %v", result.Queries)
	}
}

func TestAnswerWithoutArticles(t *testing.T) {
	search := &stubSearch{
		ids:     []string{"1"},
		records: []pubmed.Record{recordWithAbstract("1", "statin outcomes data")},
	}

	e := testEngine(t, search)
	result, err := e.Answer(context.Background(), "test question", AnswerOptions{})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if result.ArticleSummaries != nil || result.IrrelevantArticles != nil {
		t.Error("article partitions included without IncludeArticles")
	}
	if result.Synthesis == "" {
		t.Error("synthesis missing")
	}
}

func TestAnswerEmptyRetrieval(t *testing.T) {
	e := testEngine(t, &stubSearch{})

	result, err := e.Answer(context.Background(), "test question", AnswerOptions{IncludeArticles: true})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.Synthesis != "" {
		t.Errorf("Synthesis = %q, want empty", result.Synthesis)
	}
	if len(result.ArticleSummaries) != 0 || len(result.IrrelevantArticles) != 0 {
		t.Error("expected empty partitions")
	}
	if len(result.Queries) != 1 {
		t.Errorf("Queries = %v, want the generated query reported", result.Queries)
	}
}

func TestAnswerNoRelevantArticlesSkipsSynthesis(t *testing.T) {
	search := &stubSearch{
		ids:     []string{"2"},
		records: []pubmed.Record{recordWithAbstract("2", "offtopic study")},
	}

	e := testEngine(t, search)
	result, err := e.Answer(context.Background(), "test question", AnswerOptions{IncludeArticles: true})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.Synthesis != "" {
		t.Errorf("Synthesis = %q, want empty without relevant articles", result.Synthesis)
	}
	if len(result.IrrelevantArticles) != 1 {
		t.Errorf("IrrelevantArticles = %+v", result.IrrelevantArticles)
	}
}

func TestAnswerRerankGate(t *testing.T) {
	// 30 relevant records exceed the default threshold of 21; with BM25
	// enabled only the top 20 survive to synthesis.
	var records []pubmed.Record
	var ids []string
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("%d", i+1)
		ids = append(ids, id)
		records = append(records, recordWithAbstract(id, fmt.Sprintf("statin data variant %d", i)))
	}
	search := &stubSearch{ids: ids, records: records}

	e := testEngine(t, search)
	result, err := e.Answer(context.Background(), "statin data", AnswerOptions{BM25: true, IncludeArticles: true})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(result.ArticleSummaries) != 20 {
		t.Errorf("len(ArticleSummaries) = %d, want 20 after reranking", len(result.ArticleSummaries))
	}

	// Without the opt-in the full set goes through.
	result, err = e.Answer(context.Background(), "statin data", AnswerOptions{IncludeArticles: true})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(result.ArticleSummaries) != 30 {
		t.Errorf("len(ArticleSummaries) = %d, want 30 without reranking", len(result.ArticleSummaries))
	}
}
