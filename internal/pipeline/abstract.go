// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"

	"github.com/pdiddy/answer-engine/internal/pubmed"
)

// reconstructAbstract joins the labeled segments of an abstract into
// one string: segments separated by a blank line, each prefixed by
// "Label:\n" iff it carries a label, source order preserved.
func reconstructAbstract(segments []pubmed.AbstractSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if seg.Label != "" {
			b.WriteString(seg.Label)
			b.WriteString(":\n")
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// punctuation mirrors the ASCII punctuation set stripped from the
// model's verdict token.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// classifyRelevanceToken interprets a free-form relevance verdict:
// only the first token counts, lower-cased with surrounding punctuation
// stripped, and only "no"/"n" mean irrelevant. Empty or punctuation-only
// output classifies as relevant, leaving doubtful articles in rather
// than silently discarding them.
func classifyRelevanceToken(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return true
	}
	token := strings.ToLower(strings.Trim(fields[0], punctuation))
	return token != "no" && token != "n"
}
