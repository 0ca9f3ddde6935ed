package fragment

import (
	"fmt"
	"math"
	"strings"
)

const (
	// mergeGap is the maximum vertical distance (fraction of page height)
	// between two fragments of identical style that still merge into one line.
	mergeGap = 0.015

	// repeatBand quantizes relative vertical position when matching running
	// headers and footers across pages.
	repeatBand = 0.02

	// repeatPageShare is the fraction of pages a fragment must repeat on
	// before it is treated as a running header or footer.
	repeatPageShare = 0.6
)

// Normalize cleans a parsed document: sanitizes malformed fragments, merges
// vertically adjacent fragments of identical style into single lines, strips
// running headers and footers, and drops whitespace-only fragments. The
// result is a flat fragment list in reading order. An empty document yields
// an empty list.
func Normalize(doc Document) []TextFragment {
	pageCount := len(doc.Pages)
	if pageCount == 0 {
		return nil
	}

	merged := make([]TextFragment, 0, doc.FragmentCount())
	for _, page := range doc.Pages {
		merged = append(merged, mergePage(doc.ID, page)...)
	}

	return dropRepeated(merged, pageCount)
}

// mergePage sanitizes one page's fragments and collapses runs of identical
// style into lines.
func mergePage(docID string, page Page) []TextFragment {
	var out []TextFragment
	for _, f := range page.Fragments {
		f, ok := sanitize(docID, page.Number, f)
		if !ok {
			continue
		}
		if n := len(out); n > 0 && mergeable(out[n-1], f) {
			out[n-1].Text += " " + f.Text
			continue
		}
		out = append(out, f)
	}
	return out
}

// sanitize trims whitespace and repairs malformed metadata. A fragment with a
// non-finite or negative font size is demoted to size zero, which the
// structure detector treats as the lowest tier.
func sanitize(docID string, pageNum int, f TextFragment) (TextFragment, bool) {
	f.Text = strings.Join(strings.Fields(f.Text), " ")
	if f.Text == "" {
		return f, false
	}
	if math.IsNaN(f.FontSize) || math.IsInf(f.FontSize, 0) || f.FontSize < 0 {
		f.FontSize = 0
	}
	if math.IsNaN(f.Top) || math.IsInf(f.Top, 0) {
		f.Top = 1
	}
	f.Top = math.Min(1, math.Max(0, f.Top))
	if f.Page == 0 {
		f.Page = pageNum
	}
	if f.Document == "" {
		f.Document = docID
	}
	return f, true
}

func mergeable(prev, next TextFragment) bool {
	if prev.Bold != next.Bold {
		return false
	}
	if math.Abs(prev.FontSize-next.FontSize) > 0.01 {
		return false
	}
	gap := next.Top - prev.Top
	return gap >= 0 && gap <= mergeGap
}

// dropRepeated removes fragments whose text repeats verbatim at the same
// relative vertical position on at least repeatPageShare of the document's
// pages — running headers, footers, and page furniture.
func dropRepeated(frags []TextFragment, pageCount int) []TextFragment {
	if pageCount < 2 {
		return frags
	}

	pagesSeen := make(map[string]map[int]bool)
	for _, f := range frags {
		key := repeatKey(f)
		if pagesSeen[key] == nil {
			pagesSeen[key] = make(map[int]bool)
		}
		pagesSeen[key][f.Page] = true
	}

	threshold := int(math.Ceil(repeatPageShare * float64(pageCount)))
	if threshold < 2 {
		threshold = 2
	}

	out := frags[:0]
	for _, f := range frags {
		if len(pagesSeen[repeatKey(f)]) >= threshold {
			continue
		}
		out = append(out, f)
	}
	return out
}

func repeatKey(f TextFragment) string {
	band := int(f.Top / repeatBand)
	return fmt.Sprintf("%s\x00%d", strings.ToLower(f.Text), band)
}
