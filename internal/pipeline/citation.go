// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/pdiddy/answer-engine/internal/pubmed"
)

// articleURLTemplate is the canonical PubMed page for a record.
const articleURLTemplate = "https://pubmed.ncbi.nlm.nih.gov/%s/"

// articleURL derives the record's public URL from its PMID.
func articleURL(rec pubmed.Record) string {
	return fmt.Sprintf(articleURLTemplate, rec.PMID)
}

// citation returns the bibliographic citation for a record: the first
// entry of its reference list when one exists, otherwise an AMA-style
// citation built from whatever fields are present. It never fails;
// missing fields degrade to empty strings.
func citation(rec pubmed.Record) string {
	if len(rec.References) > 0 {
		return rec.References[0]
	}
	return amaCitation(rec)
}

// amaCitation formats "{authors}. {title}. {journal}. {year};{volume}({issue}):{pages}."
// with authors as "Last Initials" joined by ", ".
func amaCitation(rec pubmed.Record) string {
	names := make([]string, 0, len(rec.Authors))
	for _, a := range rec.Authors {
		names = append(names, fmt.Sprintf("%s %s", a.LastName, a.Initials))
	}

	return fmt.Sprintf("%s. %s. %s. %s;%s(%s):%s.",
		strings.Join(names, ", "), rec.Title, rec.Journal,
		rec.Year, rec.Volume, rec.Issue, rec.Pages)
}
