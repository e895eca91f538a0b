// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/prompts"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// blockSeparator divides the per-article source blocks handed to the
// synthesis prompt.
var blockSeparator = "\n\n" + strings.Repeat("-", 62) + "\n\n"

// synthesisData feeds the synthesis prompt template.
type synthesisData struct {
	Question         string
	ArticleSummaries string
}

// Synthesizer merges the relevant article summaries into one cited
// answer.
type Synthesizer struct {
	client      llm.Client
	catalog     *prompts.Catalog
	temperature float64
}

// NewSynthesizer builds a Synthesizer.
func NewSynthesizer(client llm.Client, catalog *prompts.Catalog, temperature float64) *Synthesizer {
	return &Synthesizer{client: client, catalog: catalog, temperature: temperature}
}

// Synthesize sends the numbered source blocks and the question to the
// model and returns its answer. When withURL is set, a "References:"
// section with clickable citations is appended after the answer text.
// The numbering of the blocks and of the reference list are aligned to
// the same input order.
func (s *Synthesizer) Synthesize(ctx context.Context, summaries []types.ArticleResult, question string, withURL bool) (string, error) {
	blocks, citations := buildCitationsAndSummaries(summaries, withURL)

	system, user, err := s.catalog.Render(prompts.SynthesisPrompt, synthesisData{
		Question:         question,
		ArticleSummaries: blocks,
	})
	if err != nil {
		return "", err
	}

	answer, err := s.client.Generate(ctx, llm.Request{
		System:      system,
		User:        user,
		Temperature: s.temperature,
		MaxTokens:   synthesisMaxTokens,
	})
	if err != nil {
		return "", err
	}

	if withURL {
		answer = answer + "\n\n" + "References:\n" + citations
	}
	return answer, nil
}

// buildCitationsAndSummaries produces the "[i] Source:" blocks for the
// synthesis prompt and the parallel "[i] citation" reference list,
// 1-indexed in input order. Newlines inside citations are flattened so
// each reference stays on one line.
func buildCitationsAndSummaries(summaries []types.ArticleResult, withURL bool) (blocks, citations string) {
	blockList := make([]string, 0, len(summaries))
	citationList := make([]string, 0, len(summaries))

	for i, summary := range summaries {
		cite := strings.ReplaceAll(summary.Citation, "\n", "")
		blockList = append(blockList,
			fmt.Sprintf("[%d] Source: %s\n\n\n %s", i+1, cite, summary.Summary))

		indexed := fmt.Sprintf("[%d] %s", i+1, cite)
		if withURL {
			indexed = fmt.Sprintf("<li><a href=%q target=\"_blank\"> %s</a></li>", summary.URL, indexed)
		}
		citationList = append(citationList, indexed)
	}

	citations = strings.Join(citationList, "\n")
	if withURL {
		citations = "<ul>" + citations + "</ul>"
	}
	return strings.Join(blockList, blockSeparator), citations
}
