package fragment

// TextFragment is a positioned run of text with font metadata, the atomic
// unit produced by a document parser. Top is the fragment's vertical position
// as a fraction of page height measured from the top edge (0 = top,
// 1 = bottom).
type TextFragment struct {
	Text     string
	FontSize float64
	Bold     bool
	Top      float64
	Page     int
	Document string
}

// Page groups the fragments of one page in reading order.
type Page struct {
	Number    int
	Fragments []TextFragment
}

// Document is the parser output for one file: ordered pages of positioned
// fragments. ID is the document identifier used in all downstream output.
type Document struct {
	ID    string
	Title string
	Pages []Page
}

// FragmentCount returns the total number of fragments across all pages.
func (d Document) FragmentCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Fragments)
	}
	return n
}
