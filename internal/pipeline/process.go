// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/prompts"
	"github.com/pdiddy/answer-engine/internal/pubmed"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// articleData feeds the relevance and summarization prompt templates.
type articleData struct {
	Question    string
	ArticleText string
}

// Processor judges relevance and summarizes articles concurrently.
type Processor struct {
	client      llm.Client
	catalog     *prompts.Catalog
	temperature float64
	concurrency int
	cooldown    time.Duration
	log         *zap.Logger
}

// NewProcessor builds a Processor. concurrency bounds the worker pool;
// cooldown is the wait before the single per-article retry.
func NewProcessor(client llm.Client, catalog *prompts.Catalog, temperature float64, concurrency int, cooldown time.Duration, log *zap.Logger) *Processor {
	return &Processor{
		client:      client,
		catalog:     catalog,
		temperature: temperature,
		concurrency: concurrency,
		cooldown:    cooldown,
		log:         log,
	}
}

type outcome struct {
	result *types.ArticleResult
	err    error
}

// Process runs every record through relevance classification and, for
// relevant ones, summarization, on a fixed-size worker pool. Results
// are partitioned by the relevance flag in completion order; callers
// must not assume input order. Records without an abstract are dropped
// with a warning. A record whose processing fails gets exactly one
// retry after the cooldown; a second failure aborts the run, but the
// partitions collected so far are still returned alongside the error.
func (p *Processor) Process(ctx context.Context, records []pubmed.Record, question string) (relevant, irrelevant []types.ArticleResult, err error) {
	jobs := make(chan pubmed.Record)
	results := make(chan outcome, len(records))
	var wg sync.WaitGroup

	for w := 0; w < p.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				results <- p.processWithRetry(ctx, rec, question)
			}
		}()
	}

	go func() {
		for _, rec := range records {
			jobs <- rec
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for out := range results {
		if out.err != nil {
			if err == nil {
				err = out.err
			}
			continue
		}
		if out.result == nil {
			continue
		}
		if out.result.Relevant {
			relevant = append(relevant, *out.result)
		} else {
			irrelevant = append(irrelevant, *out.result)
		}
	}

	return relevant, irrelevant, err
}

// processWithRetry applies the per-article failure policy: one retry
// after the cooldown for a suspected overload, then the failure is
// final for that article. Configuration errors are never retried.
func (p *Processor) processWithRetry(ctx context.Context, rec pubmed.Record, question string) outcome {
	if !rec.HasAbstract() {
		p.log.Warn("dropping record without abstract", zap.String("pmid", rec.PMID))
		return outcome{}
	}

	result, err := p.processRecord(ctx, rec, question)
	if err == nil {
		return outcome{result: result}
	}
	if errors.Is(err, types.ErrConfiguration) {
		return outcome{err: err}
	}

	p.log.Warn("article processing failed, retrying after cooldown",
		zap.String("pmid", rec.PMID), zap.Duration("cooldown", p.cooldown), zap.Error(err))

	select {
	case <-time.After(p.cooldown):
	case <-ctx.Done():
		return outcome{err: ctx.Err()}
	}

	result, err = p.processRecord(ctx, rec, question)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{result: result}
}

// processRecord builds the ArticleResult for one record: reconstructed
// abstract, relevance verdict, citation, and a summary when relevant.
func (p *Processor) processRecord(ctx context.Context, rec pubmed.Record, question string) (*types.ArticleResult, error) {
	abstract := reconstructAbstract(rec.Abstract)

	system, user, err := p.catalog.Render(prompts.RelevancePrompt, articleData{
		Question:    question,
		ArticleText: abstract,
	})
	if err != nil {
		return nil, err
	}

	verdict, err := p.client.Generate(ctx, llm.Request{
		System:      system,
		User:        user,
		Temperature: p.temperature,
		MaxTokens:   relevanceMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	result := &types.ArticleResult{
		PMID:     rec.PMID,
		Title:    rec.Title,
		URL:      articleURL(rec),
		Abstract: abstract,
		Citation: citation(rec),
		Relevant: classifyRelevanceToken(verdict),
	}
	if !result.Relevant {
		return result, nil
	}

	system, user, err = p.catalog.Render(prompts.SummarizationPrompt, articleData{
		Question:    question,
		ArticleText: abstract,
	})
	if err != nil {
		return nil, err
	}

	summary, err := p.client.Generate(ctx, llm.Request{
		System:      system,
		User:        user,
		Temperature: p.temperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	return result, nil
}
