// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared vocabulary of the answer engine:
// pipeline results, configuration, and error kinds.
package types

import "errors"

// Error kinds shared across the pipeline and the service boundary.
var (
	// ErrUpstreamUnavailable marks transport or quota failures from the
	// language model or the literature database. The HTTP layer maps it
	// to 503.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrConfiguration marks fatal configuration problems such as an
	// unknown prompt name. Never retried.
	ErrConfiguration = errors.New("configuration error")
)

// ArticleResult is the pipeline's view of one fetched article.
type ArticleResult struct {
	// PMID is the PubMed identifier of the source record.
	PMID string `json:"pmid"`

	// Title is the article title.
	Title string `json:"title"`

	// URL is the canonical PubMed page for the article.
	URL string `json:"url"`

	// Abstract is the reconstructed single-string abstract.
	Abstract string `json:"abstract"`

	// Citation is the bibliographic citation string.
	Citation string `json:"citation"`

	// Relevant is the model's judgment of whether the abstract answers
	// the question.
	Relevant bool `json:"is_relevant"`

	// Summary is the model-generated summary. Set only when Relevant.
	Summary string `json:"summary,omitempty"`
}

// AnswerResult is the payload produced for one question.
type AnswerResult struct {
	// Synthesis is the final answer text with numbered citations.
	Synthesis string `json:"synthesis"`

	// ArticleSummaries holds the relevant articles, in the order they
	// were passed to synthesis. Omitted when articles are not requested.
	ArticleSummaries []ArticleResult `json:"article_summaries,omitempty"`

	// IrrelevantArticles holds articles judged not relevant.
	IrrelevantArticles []ArticleResult `json:"irrelevant_articles,omitempty"`

	// Queries lists the generated search queries, deduplicated.
	Queries []string `json:"queries,omitempty"`
}
