// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/prompts"
	"github.com/pdiddy/answer-engine/internal/pubmed"
)

const testCatalogYAML = `prompts:
  pubmed_query:
    system: query-system
    template: "Question: {{.Question}}"
  relevance:
    system: relevance-system
    template: |-
      Question: {{.Question}}
      Abstract: {{.ArticleText}}
  summarization:
    system: summarization-system
    template: |-
      Question: {{.Question}}
      Abstract: {{.ArticleText}}
  synthesis:
    system: synthesis-system
    template: |-
      Question: {{.Question}}
      Sources: {{.ArticleSummaries}}
`

func testCatalog(t *testing.T) *prompts.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte(testCatalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := prompts.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// stubLLM dispatches on the system text of the prompt, so each pipeline
// stage can be scripted independently.
type stubLLM struct {
	generate func(req llm.Request) (string, error)
}

func (s *stubLLM) Generate(_ context.Context, req llm.Request) (string, error) {
	return s.generate(req)
}

// stubSearch is a deterministic pubmed.Client.
type stubSearch struct {
	ids         []string
	records     []pubmed.Record
	searchCalls int
	fetchedIDs  []string
}

func (s *stubSearch) Search(_ context.Context, _ string, _ int, _ bool) ([]string, error) {
	s.searchCalls++
	return s.ids, nil
}

func (s *stubSearch) Fetch(_ context.Context, ids []string) ([]pubmed.Record, error) {
	s.fetchedIDs = append(s.fetchedIDs, ids...)
	return s.records, nil
}
