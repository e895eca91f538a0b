// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline implements the answer pipeline: query generation,
// literature retrieval, concurrent per-article relevance filtering and
// summarization, optional BM25 reranking, and citation-aware synthesis.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/prompts"
)

// Token budgets per model call, matching the prompt sizes each stage
// produces.
const (
	queryMaxTokens     = 1024
	relevanceMaxTokens = 512
	summaryMaxTokens   = 1024
	synthesisMaxTokens = 1024
)

// questionData feeds the query-generation prompt template.
type questionData struct {
	Question string
}

// QueryGenerator turns a clinical question into PubMed query strings.
type QueryGenerator struct {
	client      llm.Client
	catalog     *prompts.Catalog
	temperature float64
	years       int
	log         *zap.Logger
}

// NewQueryGenerator builds a QueryGenerator. years is the span of the
// optional date-restriction window.
func NewQueryGenerator(client llm.Client, catalog *prompts.Catalog, temperature float64, years int, log *zap.Logger) *QueryGenerator {
	return &QueryGenerator{
		client:      client,
		catalog:     catalog,
		temperature: temperature,
		years:       years,
		log:         log,
	}
}

// Generate asks the model for one query per attempt and returns the
// distinct queries in first-seen order. Queries are deduplicated by
// exact text only; semantically equivalent rewordings stay separate. A
// failed attempt is logged and skipped, it never aborts the remaining
// attempts. When restriction is set (dateLayout form) each query gets a
// publication-date clause covering the preceding window.
func (g *QueryGenerator) Generate(ctx context.Context, question string, attempts int, restriction string) ([]string, error) {
	system, user, err := g.catalog.Render(prompts.QueryPrompt, questionData{Question: question})
	if err != nil {
		return nil, err
	}

	var clause string
	if restriction != "" {
		clause, err = dateClause(restriction, g.years)
		if err != nil {
			return nil, fmt.Errorf("building date restriction: %w", err)
		}
	}

	seen := make(map[string]bool)
	var queries []string

	for attempt := 0; attempt < attempts; attempt++ {
		query, err := g.client.Generate(ctx, llm.Request{
			System:      system,
			User:        user,
			Temperature: g.temperature,
			MaxTokens:   queryMaxTokens,
		})
		if err != nil {
			g.log.Warn("query generation attempt failed",
				zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		query += clause
		if seen[query] {
			continue
		}
		seen[query] = true
		queries = append(queries, query)
	}

	return queries, nil
}
