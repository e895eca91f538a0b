// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/answer-engine/internal/pubmed"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []pubmed.Record{
		{PMID: "100", Title: "First", Abstract: []pubmed.AbstractSegment{{Text: "alpha"}}},
		{PMID: "200", Title: "Second"},
	}
	require.NoError(t, s.Put(ctx, recs))

	got, missing, err := s.Get(ctx, []string{"100", "300", "200"})
	require.NoError(t, err)

	assert.Equal(t, []string{"300"}, missing)
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, "alpha", got[0].Abstract[0].Text)
	assert.Equal(t, "200", got[1].PMID)
}

func TestPutUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []pubmed.Record{{PMID: "100", Title: "Old"}}))
	require.NoError(t, s.Put(ctx, []pubmed.Record{{PMID: "100", Title: "New"}}))

	got, missing, err := s.Get(ctx, []string{"100"})
	require.NoError(t, err)
	assert.Empty(t, missing)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Title)
}

func TestGetEmptyCache(t *testing.T) {
	s := openTestStore(t)

	got, missing, err := s.Get(context.Background(), []string{"1", "2"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{"1", "2"}, missing)
}

func TestPutNothing(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(context.Background(), nil))
}
