package parser

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dghofer/docsight/internal/fragment"
	pdflib "github.com/ledongthuc/pdf"
)

// rowTolerance is the vertical distance in points within which two content
// runs belong to the same visual line.
const rowTolerance = 2.0

// defaultPageHeight is US Letter in points, used when a page carries no
// usable MediaBox.
const defaultPageHeight = 792.0

// PDFParser handles PDF files, preserving font size and position per line
// so the structure detector can work from real styling.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (fragment.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docsight-pdf-*.pdf")
	if err != nil {
		return fragment.Document{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fragment.Document{}, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return fragment.Document{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc := fragment.Document{
		ID:    filename,
		Title: baseTitle(filename),
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		frags := pageFragments(page, i, filename)
		if len(frags) == 0 {
			continue
		}
		doc.Pages = append(doc.Pages, fragment.Page{Number: i, Fragments: frags})
	}

	return doc, nil
}

// pageFragments groups a page's content runs into visual lines and emits
// one fragment per line.
func pageFragments(page pdflib.Page, pageNum int, docID string) []fragment.TextFragment {
	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	y0, height := pageGeometry(page)

	// Group runs into rows by Y.
	type row struct {
		y    float64
		runs []pdflib.Text
	}
	var rows []*row
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		var target *row
		for _, rw := range rows {
			if t.Y >= rw.y-rowTolerance && t.Y <= rw.y+rowTolerance {
				target = rw
				break
			}
		}
		if target == nil {
			target = &row{y: t.Y}
			rows = append(rows, target)
		}
		target.runs = append(target.runs, t)
	}

	// PDF origin is bottom-left: top of the page first means descending Y.
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].y > rows[b].y })

	frags := make([]fragment.TextFragment, 0, len(rows))
	for _, rw := range rows {
		sort.SliceStable(rw.runs, func(a, b int) bool { return rw.runs[a].X < rw.runs[b].X })

		var sb strings.Builder
		maxSize := 0.0
		bold := false
		for _, run := range rw.runs {
			sb.WriteString(run.S)
			if run.FontSize > maxSize {
				maxSize = run.FontSize
			}
			if strings.Contains(strings.ToLower(run.Font), "bold") {
				bold = true
			}
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}

		top := 1 - (rw.y-y0)/height
		if top < 0 {
			top = 0
		}
		if top > 1 {
			top = 1
		}

		frags = append(frags, fragment.TextFragment{
			Text:     text,
			FontSize: maxSize,
			Bold:     bold,
			Top:      top,
			Page:     pageNum,
			Document: docID,
		})
	}
	return frags
}

// pageGeometry reads the page's MediaBox, falling back to US Letter.
func pageGeometry(page pdflib.Page) (y0, height float64) {
	box := page.V.Key("MediaBox")
	if box.Kind() == pdflib.Array && box.Len() == 4 {
		bottom := box.Index(1).Float64()
		top := box.Index(3).Float64()
		if top > bottom {
			return bottom, top - bottom
		}
	}
	return 0, defaultPageHeight
}
