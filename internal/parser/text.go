package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dghofer/docsight/internal/fragment"
)

// TextParser handles plain text files. Paragraphs become uniform-size
// fragments; the structure detector can still pick out shaped headings
// (numbered or all-caps lines).
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (fragment.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return fragment.Document{}, err
	}

	frags := make([]fragment.TextFragment, 0, len(paragraphs))
	for _, para := range paragraphs {
		// A paragraph may itself start with a heading-shaped line; split it
		// off so the detector sees it on its own.
		lines := strings.SplitN(para, "\n", 2)
		if len(lines) == 2 && looksLikeHeadingLine(lines[0]) {
			frags = append(frags,
				fragment.TextFragment{Text: lines[0], FontSize: sizeText},
				fragment.TextFragment{Text: lines[1], FontSize: sizeText},
			)
			continue
		}
		frags = append(frags, fragment.TextFragment{Text: para, FontSize: sizeText})
	}

	return fragment.Document{
		ID:    filename,
		Title: baseTitle(filename),
		Pages: singlePage(filename, frags),
	}, nil
}

// looksLikeHeadingLine is a cheap pre-check: short lines that are all caps
// or numbered. The real classification happens downstream.
func looksLikeHeadingLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 80 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			hasLetter = true
		}
	}
	return hasLetter
}
