// Package parser converts raw document bytes into positioned text
// fragments. Each format maps its native styling onto synthetic font sizes
// and bold flags so the structure detector can treat every source the same
// way.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dghofer/docsight/internal/fragment"
)

// Synthetic font sizes for formats with explicit heading markup. PDF keeps
// its real font sizes; everything else maps onto this scale.
const (
	sizeH1   = 24.0
	sizeH2   = 18.0
	sizeH3   = 14.0
	sizeH4   = 12.0
	sizeBody = 11.0
	sizeText = 12.0
)

// Parser converts raw document bytes into a fragment Document.
type Parser interface {
	Parse(r io.Reader, filename string) (fragment.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle strips the extension from a filename for use as a fallback
// document title.
func baseTitle(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// headingSize maps an explicit heading depth (1-based) onto the synthetic
// font scale.
func headingSize(level int) float64 {
	switch level {
	case 1:
		return sizeH1
	case 2:
		return sizeH2
	case 3:
		return sizeH3
	default:
		return sizeH4
	}
}

// singlePage wraps ordered fragments into one page, spreading their Top
// positions over the page so early content lands in the top third.
func singlePage(docID string, frags []fragment.TextFragment) []fragment.Page {
	if len(frags) == 0 {
		return nil
	}
	n := float64(len(frags))
	for i := range frags {
		frags[i].Top = float64(i) / n
		frags[i].Page = 1
		frags[i].Document = docID
	}
	return []fragment.Page{{Number: 1, Fragments: frags}}
}
