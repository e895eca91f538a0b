// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/internal/pubmed"
)

// Retriever drives query generation, runs the searches, and fetches
// full records through the optional on-disk cache.
type Retriever struct {
	search     pubmed.Client
	store      *cache.Store // nil disables caching
	gen        *QueryGenerator
	numResults int
	log        *zap.Logger
}

// NewRetriever builds a Retriever. store may be nil, in which case every
// fetch goes to the upstream service.
func NewRetriever(search pubmed.Client, store *cache.Store, gen *QueryGenerator, numResults int, log *zap.Logger) *Retriever {
	return &Retriever{
		search:     search,
		store:      store,
		gen:        gen,
		numResults: numResults,
		log:        log,
	}
}

// Search generates queries for the question and unions the ids returned
// by each into one set, preserving first-seen order. A query returning
// no ids is a soft warning; a failed search is logged and the loop
// continues. Empty queries or ids mean "no answer producible", not an
// error.
func (r *Retriever) Search(ctx context.Context, question string, attempts int, restriction string) (queries, ids []string, err error) {
	queries, err = r.gen.Generate(ctx, question, attempts, restriction)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	for _, query := range queries {
		found, err := r.search.Search(ctx, query, r.numResults, true)
		if err != nil {
			r.log.Warn("search failed", zap.String("query", query), zap.Error(err))
			continue
		}
		if len(found) == 0 {
			r.log.Warn("query returned no ids", zap.String("query", query))
		}

		for _, id := range found {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return queries, ids, nil
}

// Fetch returns full records for ids, serving cached records first and
// fetching only the rest upstream. Newly fetched records are written
// back to the cache best-effort.
func (r *Retriever) Fetch(ctx context.Context, ids []string) ([]pubmed.Record, error) {
	if r.store == nil {
		return r.search.Fetch(ctx, ids)
	}

	cached, missing, err := r.store.Get(ctx, ids)
	if err != nil {
		r.log.Warn("cache read failed, fetching everything upstream", zap.Error(err))
		return r.search.Fetch(ctx, ids)
	}
	if len(missing) == 0 {
		return cached, nil
	}

	fetched, err := r.search.Fetch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := r.store.Put(ctx, fetched); err != nil {
		r.log.Warn("cache write failed", zap.Error(err))
	}

	return append(cached, fetched...), nil
}
