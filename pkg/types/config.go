// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "answer-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds settings for the language model client.
type LLMConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0.5).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// PubMedConfig holds settings for the literature database client.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent as the Entrez email parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CachePath, when set, enables the on-disk record cache at this
	// SQLite database path.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`
}

// PipelineConfig holds settings for the answer pipeline.
type PipelineConfig struct {
	// NumResults caps the ids returned per generated query (default 16).
	NumResults int `json:"num_results" yaml:"num_results"`

	// QueryAttempts is the number of query-generation rounds (default 3).
	QueryAttempts int `json:"query_attempts" yaml:"query_attempts"`

	// Concurrency bounds the article-processing worker pool (default 8).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// RetryCooldown is the wait before the single per-article retry
	// (default 20s). A failure after the retry aborts the run.
	RetryCooldown time.Duration `json:"retry_cooldown" yaml:"retry_cooldown"`

	// RestrictionYears is the span of the date-restriction window
	// (default 20).
	RestrictionYears int `json:"restriction_years" yaml:"restriction_years"`

	// RerankThreshold is the summary count above which BM25 reranking
	// activates (default 21).
	RerankThreshold int `json:"rerank_threshold" yaml:"rerank_threshold"`

	// RerankTopN is the number of summaries kept after reranking
	// (default 20).
	RerankTopN int `json:"rerank_top_n" yaml:"rerank_top_n"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.NumResults <= 0 {
		c.NumResults = 16
	}
	if c.QueryAttempts <= 0 {
		c.QueryAttempts = 3
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.RetryCooldown <= 0 {
		c.RetryCooldown = 20 * time.Second
	}
	if c.RestrictionYears <= 0 {
		c.RestrictionYears = 20
	}
	if c.RerankThreshold <= 0 {
		c.RerankThreshold = 21
	}
	if c.RerankTopN <= 0 {
		c.RerankTopN = 20
	}
	return c
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ReturnArticles is the default for requests that do not specify
	// whether article partitions should be included in the response.
	ReturnArticles bool `json:"return_articles" yaml:"return_articles"`
}

// Config groups all component configurations.
type Config struct {
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	PubMed   PubMedConfig   `json:"pubmed" yaml:"pubmed"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Server   ServerConfig   `json:"server" yaml:"server"`

	// PromptPath is the path to the YAML prompt catalog.
	PromptPath string `json:"prompt_path" yaml:"prompt_path"`
}
