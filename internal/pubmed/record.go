// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import "encoding/xml"

// AbstractSegment is one labeled section of an abstract. Label is empty
// for unstructured abstracts.
type AbstractSegment struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

// Author is one entry of an article's author list.
type Author struct {
	LastName string `json:"last_name"`
	Initials string `json:"initials"`
}

// Record is a well-formed literature entry fetched from PubMed. Records
// are immutable once built; the pipeline derives all further data from
// them.
type Record struct {
	PMID     string            `json:"pmid"`
	Title    string            `json:"title"`
	Abstract []AbstractSegment `json:"abstract,omitempty"`
	Authors  []Author          `json:"authors,omitempty"`
	Journal  string            `json:"journal,omitempty"`
	Year     string            `json:"year,omitempty"`
	Volume   string            `json:"volume,omitempty"`
	Issue    string            `json:"issue,omitempty"`
	Pages    string            `json:"pages,omitempty"`

	// References holds the citation strings of the article's first
	// reference list, when PubMed supplies one.
	References []string `json:"references,omitempty"`
}

// HasAbstract reports whether the record carries any abstract text.
func (r Record) HasAbstract() bool {
	for _, seg := range r.Abstract {
		if seg.Text != "" {
			return true
		}
	}
	return false
}

// EFetch XML structures (PubmedArticleSet).

type articleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID    string        `xml:"PMID"`
	Article articleRecord `xml:"Article"`
}

type articleRecord struct {
	Title      string        `xml:"ArticleTitle"`
	Journal    journalInfo   `xml:"Journal"`
	Pagination pagination    `xml:"Pagination"`
	Abstract   abstractBlock `xml:"Abstract"`
	AuthorList authorList    `xml:"AuthorList"`
}

type journalInfo struct {
	Title string       `xml:"Title"`
	Issue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	Volume string `xml:"Volume"`
	Issue  string `xml:"Issue"`
}

type pagination struct {
	MedlinePgn string `xml:"MedlinePgn"`
}

type abstractBlock struct {
	Segments []abstractText `xml:"AbstractText"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type authorList struct {
	Authors []xmlAuthor `xml:"Author"`
}

type xmlAuthor struct {
	LastName string `xml:"LastName"`
	Initials string `xml:"Initials"`
}

type pubmedData struct {
	History        pubHistory      `xml:"History"`
	ReferenceLists []referenceList `xml:"ReferenceList"`
}

type pubHistory struct {
	Dates []pubDate `xml:"PubMedPubDate"`
}

type pubDate struct {
	Year string `xml:"Year"`
}

type referenceList struct {
	References []reference `xml:"Reference"`
}

type reference struct {
	Citation string `xml:"Citation"`
}

// toRecord converts one fetched article to a Record. ok is false for
// malformed entries (no PMID), which the caller drops.
func toRecord(a pubmedArticle) (Record, bool) {
	if a.Citation.PMID == "" {
		return Record{}, false
	}

	r := Record{
		PMID:    a.Citation.PMID,
		Title:   a.Citation.Article.Title,
		Journal: a.Citation.Article.Journal.Title,
		Volume:  a.Citation.Article.Journal.Issue.Volume,
		Issue:   a.Citation.Article.Journal.Issue.Issue,
		Pages:   a.Citation.Article.Pagination.MedlinePgn,
	}

	for _, seg := range a.Citation.Article.Abstract.Segments {
		r.Abstract = append(r.Abstract, AbstractSegment{Label: seg.Label, Text: seg.Text})
	}
	for _, au := range a.Citation.Article.AuthorList.Authors {
		r.Authors = append(r.Authors, Author{LastName: au.LastName, Initials: au.Initials})
	}
	if len(a.Data.History.Dates) > 0 {
		r.Year = a.Data.History.Dates[0].Year
	}
	if len(a.Data.ReferenceLists) > 0 {
		for _, ref := range a.Data.ReferenceLists[0].References {
			if ref.Citation != "" {
				r.References = append(r.References, ref.Citation)
			}
		}
	}

	return r, true
}
