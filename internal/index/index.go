// Package index builds the immutable TF-IDF vector space over assembled
// sections. An Index is constructed in one pass and never mutated: once
// built it is safe for any number of concurrent ranking queries. Rebuilding
// for a new document collection means building a new Index.
package index

import (
	"math"
	"sort"

	"github.com/dghofer/docsight/internal/section"
	"github.com/dghofer/docsight/internal/tokenize"
)

// Index is the read-only vector space. The IDF document unit is one Section,
// not one file.
type Index struct {
	sections []section.Section
	vectors  []map[string]float64
	terms    [][]string // distinct terms per section, sorted
	idf      map[string]float64
	docCount int
}

// Build tokenizes every section (title plus body), computes IDF over the
// section corpus, and materializes one L2-normalized TF-IDF vector per
// section. An empty corpus yields a valid empty index.
func Build(sections []section.Section) *Index {
	n := len(sections)
	ix := &Index{
		sections: sections,
		vectors:  make([]map[string]float64, n),
		terms:    make([][]string, n),
		idf:      make(map[string]float64),
	}

	tfs := make([]map[string]float64, n)
	df := make(map[string]int)

	for i, s := range sections {
		tf := make(map[string]float64)
		for _, w := range tokenize.Words(s.Title + " " + s.Body) {
			tf[w]++
		}
		tfs[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	for term, count := range df {
		ix.idf[term] = idfValue(n, count)
	}

	for i, tf := range tfs {
		vec := make(map[string]float64, len(tf))
		for term, freq := range tf {
			vec[term] = freq * ix.idf[term]
		}
		normalize(vec)
		ix.vectors[i] = vec
		ix.terms[i] = sortedTerms(tf)
	}

	ix.docCount = n
	return ix
}

// Len returns the number of sections in the corpus.
func (ix *Index) Len() int { return len(ix.sections) }

// Section returns the i-th section in corpus order.
func (ix *Index) Section(i int) section.Section { return ix.sections[i] }

// Sections returns the corpus in original order. Callers must treat the
// slice as read-only.
func (ix *Index) Sections() []section.Section { return ix.sections }

// Vector returns the i-th section's normalized TF-IDF vector. Read-only.
func (ix *Index) Vector(i int) map[string]float64 { return ix.vectors[i] }

// Terms returns the i-th section's distinct terms in sorted order.
func (ix *Index) Terms(i int) []string { return ix.terms[i] }

// IDF returns the inverse document frequency of a term. Unseen terms get
// the maximum IDF, as if they occurred in zero sections.
func (ix *Index) IDF(term string) float64 {
	if v, ok := ix.idf[term]; ok {
		return v
	}
	return idfValue(ix.docCount, 0)
}

// QueryVector turns raw query term frequencies into a normalized TF-IDF
// vector comparable with section vectors.
func (ix *Index) QueryVector(tf map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(tf))
	for term, freq := range tf {
		if freq <= 0 {
			continue
		}
		vec[term] = freq * ix.IDF(term)
	}
	normalize(vec)
	return vec
}

// Cosine computes cosine similarity between two normalized vectors.
// Iteration is over sorted terms so floating-point accumulation order, and
// with it the result, is reproducible run to run.
func Cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	dot := 0.0
	for _, term := range sortedKeys(small) {
		if w, ok := large[term]; ok {
			dot += small[term] * w
		}
	}
	if dot > 1 {
		dot = 1
	}
	return dot
}

// idfValue uses smoothed log scaling so terms present in every section
// still carry a small positive weight.
func idfValue(docs, df int) float64 {
	return math.Log(float64(1+docs)/float64(1+df)) + 1
}

// normalize scales a vector to unit length in place, accumulating in
// sorted-term order for reproducibility.
func normalize(vec map[string]float64) {
	sum := 0.0
	for _, term := range sortedKeys(vec) {
		sum += vec[term] * vec[term]
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for term := range vec {
		vec[term] /= norm
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTerms(tf map[string]float64) []string {
	terms := make([]string, 0, len(tf))
	for t := range tf {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
