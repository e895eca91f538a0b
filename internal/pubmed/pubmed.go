// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries the NCBI E-utilities API: ESearch for record
// identifiers and EFetch for full records. Malformed entries are dropped
// with a warning, never returned as partial records.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/httputil"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// fetchBatchSize bounds the ids sent per EFetch request, within the
// E-utilities GET limits.
const fetchBatchSize = 100

// Client searches the literature database and fetches full records.
type Client interface {
	Search(ctx context.Context, query string, limit int, sortByRelevance bool) ([]string, error)
	Fetch(ctx context.Context, ids []string) ([]Record, error)
}

// HTTPClient is the production Client backed by the E-utilities API.
type HTTPClient struct {
	client    *http.Client
	email     string
	apiKey    string
	userAgent string
	log       *zap.Logger
}

// NewClient builds an HTTPClient from config.
func NewClient(cfg types.PubMedConfig, log *zap.Logger) *HTTPClient {
	return &HTTPClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		email:     cfg.Email,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		log:       log,
	}
}

// esearch JSON response.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	IDList []string `json:"idlist"`
}

// Search runs one ESearch call and returns the matching PMIDs, most
// relevant first when sortByRelevance is set. An empty id list is a
// legitimate result, not an error.
func (c *HTTPClient) Search(ctx context.Context, query string, limit int, sortByRelevance bool) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
	}
	if sortByRelevance {
		params.Set("sort", "relevance")
	}
	c.setIdentity(params)

	body, err := c.get(ctx, esearchBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("esearch %q: %w", query, err)
	}

	var er esearchResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("%w: parsing esearch response: %v", types.ErrUpstreamUnavailable, err)
	}
	return er.Result.IDList, nil
}

// Fetch retrieves full records for the given ids in batches and returns
// the well-formed ones in request order. Entries without a PMID are
// dropped with a warning.
func (c *HTTPClient) Fetch(ctx context.Context, ids []string) ([]Record, error) {
	var records []Record

	for start := 0; start < len(ids); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := c.fetchBatch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}

	return records, nil
}

func (c *HTTPClient) fetchBatch(ctx context.Context, ids []string) ([]Record, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"rettype": {"xml"},
		"retmode": {"xml"},
	}
	c.setIdentity(params)

	body, err := c.get(ctx, efetchBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}

	var set articleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("%w: parsing efetch response: %v", types.ErrUpstreamUnavailable, err)
	}

	var records []Record
	for _, a := range set.Articles {
		rec, ok := toRecord(a)
		if !ok {
			c.log.Warn("dropping malformed record without PMID")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// get performs one GET with 429 retry and reads the full body. Transport
// and HTTP failures wrap types.ErrUpstreamUnavailable.
func (c *HTTPClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: E-utilities returned HTTP %d", types.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", types.ErrUpstreamUnavailable, err)
	}
	return body, nil
}

// setIdentity adds the Entrez polite-pool parameters when configured.
func (c *HTTPClient) setIdentity(params url.Values) {
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
}
