// Package section turns classified fragments into the Section records the
// ranking pipeline scores. Sections are built once per document collection
// and never mutated afterwards.
package section

import (
	"strings"

	"github.com/dghofer/docsight/internal/structure"
)

// Section is the body text and metadata owned by one heading in a
// document's structure. Read-only after assembly.
type Section struct {
	Document  string
	Title     string
	Level     structure.HeadingLevel
	StartPage int
	EndPage   int
	Body      string
}

// Assemble walks classified fragments in document order and groups each run
// of Body fragments under its nearest preceding heading. Body text that
// appears before any heading accumulates into an implicit whole-document
// section titled after the document. Section boundaries are non-overlapping
// and cover the entire document; StartPage <= EndPage always holds.
func Assemble(docID, docTitle string, classified []structure.Classified) []Section {
	var sections []Section
	var current *Section
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.Join(body, " ")
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	open := func(title string, level structure.HeadingLevel, page int) {
		flush()
		current = &Section{
			Document:  docID,
			Title:     title,
			Level:     level,
			StartPage: page,
			EndPage:   page,
		}
	}

	implicitTitle := docTitle
	if implicitTitle == "" {
		implicitTitle = docID
	}

	for _, c := range classified {
		switch c.Level {
		case structure.LevelBody:
			if current == nil {
				open(implicitTitle, structure.LevelBody, c.Fragment.Page)
			}
			body = append(body, c.Fragment.Text)
			if c.Fragment.Page > current.EndPage {
				current.EndPage = c.Fragment.Page
			}
		default:
			// Every heading (Title included) starts a new section; the
			// previous one closes at the preceding fragment.
			open(c.Fragment.Text, c.Level, c.Fragment.Page)
		}
	}
	flush()

	return sections
}
