// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/prompts"
	"github.com/pdiddy/answer-engine/internal/pubmed"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// AnswerOptions controls one pipeline run.
type AnswerOptions struct {
	// BM25 opts in to lexical reranking of the relevant summaries when
	// their count exceeds the configured threshold.
	BM25 bool

	// RestrictionDate, in "YYYY/MM/DD" form, caps the publication date
	// window. Empty means unrestricted.
	RestrictionDate string

	// IncludeArticles includes the relevant/irrelevant article
	// partitions in the result payload.
	IncludeArticles bool

	// WithURL appends a clickable "References:" section after the
	// synthesized answer.
	WithURL bool
}

// Engine runs the full answer pipeline for one question at a time. It
// holds no cross-question mutable state, so one Engine serves
// concurrent questions.
type Engine struct {
	retriever *Retriever
	processor *Processor
	synth     *Synthesizer
	cfg       types.PipelineConfig
	log       *zap.Logger
}

// New wires the pipeline stages from their external collaborators.
// store may be nil to disable the record cache.
func New(client llm.Client, search pubmed.Client, store *cache.Store, catalog *prompts.Catalog, cfg types.Config, log *zap.Logger) *Engine {
	pcfg := cfg.Pipeline.WithDefaults()
	temperature := cfg.LLM.Temperature
	if temperature == 0 {
		temperature = 0.5
	}

	gen := NewQueryGenerator(client, catalog, temperature, pcfg.RestrictionYears, log)
	return &Engine{
		retriever: NewRetriever(search, store, gen, pcfg.NumResults, log),
		processor: NewProcessor(client, catalog, temperature, pcfg.Concurrency, pcfg.RetryCooldown, log),
		synth:     NewSynthesizer(client, catalog, temperature),
		cfg:       pcfg,
		log:       log,
	}
}

// Answer runs the pipeline: generate queries, search and fetch, filter
// and summarize concurrently, optionally rerank, then synthesize. A
// question that produces no queries or no ids returns an empty result,
// not an error; the caller decides how to present "no answer".
func (e *Engine) Answer(ctx context.Context, question string, opts AnswerOptions) (types.AnswerResult, error) {
	queries, ids, err := e.retriever.Search(ctx, question, e.cfg.QueryAttempts, opts.RestrictionDate)
	if err != nil {
		return types.AnswerResult{}, err
	}
	if len(ids) == 0 {
		e.log.Info("no ids retrieved, returning empty result", zap.String("question", question))
		return types.AnswerResult{Queries: queries}, nil
	}

	records, err := e.retriever.Fetch(ctx, ids)
	if err != nil {
		return types.AnswerResult{}, err
	}

	relevant, irrelevant, err := e.processor.Process(ctx, records, question)
	if err != nil {
		return types.AnswerResult{}, err
	}

	candidates := relevant
	if opts.BM25 && len(candidates) > e.cfg.RerankThreshold {
		e.log.Info("reranking summaries",
			zap.Int("candidates", len(candidates)), zap.Int("top_n", e.cfg.RerankTopN))
		candidates = rerank(candidates, question, e.cfg.RerankTopN)
	}

	result := types.AnswerResult{Queries: queries}
	if opts.IncludeArticles {
		result.ArticleSummaries = candidates
		result.IrrelevantArticles = irrelevant
	}

	if len(candidates) == 0 {
		e.log.Info("no relevant articles, skipping synthesis", zap.String("question", question))
		return result, nil
	}

	synthesis, err := e.synth.Synthesize(ctx, candidates, question, opts.WithURL)
	if err != nil {
		return types.AnswerResult{}, err
	}
	result.Synthesis = synthesis

	return result, nil
}
