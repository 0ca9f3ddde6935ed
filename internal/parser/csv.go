package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dghofer/docsight/internal/fragment"
)

// CSVParser handles CSV files. Row batches become body fragments under a
// per-batch heading so large tables index as multiple sections.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (fragment.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return fragment.Document{}, fmt.Errorf("parse csv: %w", err)
	}

	doc := fragment.Document{
		ID:    filename,
		Title: baseTitle(filename),
	}
	if len(records) == 0 {
		return doc, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	// Group rows into batches of 20 for manageable sections.
	const batchSize = 20
	var frags []fragment.TextFragment

	for i := 0; i < len(dataRows); i += batchSize {
		end := i + batchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}
		batch := dataRows[i:end]

		var text strings.Builder
		for _, row := range batch {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		// 1-indexed row labels, skipping the header row.
		frags = append(frags,
			fragment.TextFragment{
				Text:     fmt.Sprintf("Rows %d-%d", i+2, end+1),
				FontSize: sizeH3,
				Bold:     true,
			},
			fragment.TextFragment{
				Text:     strings.TrimSpace(text.String()),
				FontSize: sizeBody,
			},
		)
	}

	doc.Pages = singlePage(filename, frags)
	return doc, nil
}
