// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/pubmed"
	"github.com/pdiddy/answer-engine/pkg/types"
)

func queryLLM(responses ...string) *stubLLM {
	var mu sync.Mutex
	var calls int
	return &stubLLM{generate: func(req llm.Request) (string, error) {
		if req.System != "query-system" {
			return "", fmt.Errorf("unexpected system prompt %q", req.System)
		}
		mu.Lock()
		defer mu.Unlock()
		r := responses[calls%len(responses)]
		calls++
		return r, nil
	}}
}

func TestGenerateDeduplicatesQueries(t *testing.T) {
	g := NewQueryGenerator(queryLLM("statins AND outcomes", "statins AND outcomes", "statins AND mortality"),
		testCatalog(t), 0.5, 20, zap.NewNop())

	queries, err := g.Generate(context.Background(), "do statins work?", 3, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"statins AND outcomes", "statins AND mortality"}
	if !reflect.DeepEqual(queries, want) {
		t.Errorf("queries = %v, want %v", queries, want)
	}
}

func TestGenerateAppendsDateClause(t *testing.T) {
	g := NewQueryGenerator(queryLLM("statins"), testCatalog(t), 0.5, 20, zap.NewNop())

	queries, err := g.Generate(context.Background(), "q", 1, "2023/05/01")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(queries) != 1 || queries[0] != "statins AND 2003/05/01:2023/05/01[dp]" {
		t.Errorf("queries = %v", queries)
	}
}

func TestGenerateSkipsFailedAttempts(t *testing.T) {
	var mu sync.Mutex
	var calls int
	client := &stubLLM{generate: func(llm.Request) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 2 {
			return "", fmt.Errorf("%w: quota", types.ErrUpstreamUnavailable)
		}
		return fmt.Sprintf("query %d", calls), nil
	}}

	g := NewQueryGenerator(client, testCatalog(t), 0.5, 20, zap.NewNop())
	queries, err := g.Generate(context.Background(), "q", 3, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(queries) != 2 {
		t.Errorf("queries = %v, want the two successful attempts", queries)
	}
}

func TestGenerateBadRestrictionDate(t *testing.T) {
	g := NewQueryGenerator(queryLLM("q"), testCatalog(t), 0.5, 20, zap.NewNop())
	if _, err := g.Generate(context.Background(), "q", 1, "01-05-2023"); err == nil {
		t.Error("expected error for malformed restriction date")
	}
}

func TestSearchUnionsIDs(t *testing.T) {
	search := &stubSearch{ids: []string{"10", "20"}}
	gen := NewQueryGenerator(queryLLM("q one", "q two"), testCatalog(t), 0.5, 20, zap.NewNop())
	r := NewRetriever(search, nil, gen, 16, zap.NewNop())

	queries, ids, err := r.Search(context.Background(), "question", 2, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(queries) != 2 {
		t.Errorf("queries = %v", queries)
	}
	// Both queries return the same ids; the union holds each once.
	if !reflect.DeepEqual(ids, []string{"10", "20"}) {
		t.Errorf("ids = %v, want deduplicated union", ids)
	}
	if search.searchCalls != 2 {
		t.Errorf("searchCalls = %d, want 2", search.searchCalls)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	run := func() ([]string, []string) {
		search := &stubSearch{ids: []string{"10", "20"}}
		gen := NewQueryGenerator(queryLLM("fixed query"), testCatalog(t), 0.5, 20, zap.NewNop())
		r := NewRetriever(search, nil, gen, 16, zap.NewNop())

		queries, ids, err := r.Search(context.Background(), "question", 1, "")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		return queries, ids
	}

	q1, ids1 := run()
	q2, ids2 := run()
	if !reflect.DeepEqual(q1, q2) || !reflect.DeepEqual(ids1, ids2) {
		t.Errorf("runs differ: (%v, %v) vs (%v, %v)", q1, ids1, q2, ids2)
	}
}

func TestSearchEmptyIDsIsNotAnError(t *testing.T) {
	search := &stubSearch{}
	gen := NewQueryGenerator(queryLLM("query"), testCatalog(t), 0.5, 20, zap.NewNop())
	r := NewRetriever(search, nil, gen, 16, zap.NewNop())

	queries, ids, err := r.Search(context.Background(), "question", 1, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(queries) != 1 || len(ids) != 0 {
		t.Errorf("queries = %v, ids = %v", queries, ids)
	}
}

func TestFetchWithoutCache(t *testing.T) {
	search := &stubSearch{records: []pubmed.Record{recordWithAbstract("10", "text")}}
	r := NewRetriever(search, nil, nil, 16, zap.NewNop())

	records, err := r.Fetch(context.Background(), []string{"10"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].PMID != "10" {
		t.Errorf("records = %+v", records)
	}
	if !reflect.DeepEqual(search.fetchedIDs, []string{"10"}) {
		t.Errorf("fetchedIDs = %v", search.fetchedIDs)
	}
}

func TestFetchServesCachedRecordsFirst(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	cached := recordWithAbstract("10", "cached text")
	if err := store.Put(context.Background(), []pubmed.Record{cached}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	search := &stubSearch{records: []pubmed.Record{recordWithAbstract("20", "fresh text")}}
	r := NewRetriever(search, store, nil, 16, zap.NewNop())

	records, err := r.Fetch(context.Background(), []string{"10", "20"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if !reflect.DeepEqual(search.fetchedIDs, []string{"20"}) {
		t.Errorf("fetchedIDs = %v, want only the cache miss", search.fetchedIDs)
	}

	// The miss is now cached; a second fetch stays local.
	search.fetchedIDs = nil
	if _, err := r.Fetch(context.Background(), []string{"10", "20"}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(search.fetchedIDs) != 0 {
		t.Errorf("fetchedIDs = %v, want none", search.fetchedIDs)
	}
}
