// Package rank scores indexed sections against a persona-conditioned query
// and assigns contiguous importance ranks. Scoring blends TF-IDF cosine
// similarity with persona vocabulary alignment, then applies structural
// level and position adjustments.
package rank

import (
	"context"
	"sort"

	"github.com/dghofer/docsight/internal/index"
	"github.com/dghofer/docsight/internal/persona"
	"github.com/dghofer/docsight/internal/section"
	"github.com/dghofer/docsight/internal/structure"
	"github.com/dghofer/docsight/internal/tokenize"
)

// personaTermBoost is how strongly a persona vocabulary term contributes to
// the query vector relative to a literal query word.
const personaTermBoost = 2.0

// Weights controls the score blend. Cosine and Persona should sum to 1.
type Weights struct {
	Cosine          float64
	Persona         float64
	LevelMultiplier map[structure.HeadingLevel]float64
	PositionBonus   float64
}

// DefaultWeights returns the standard blend: textual similarity dominates,
// persona alignment refines, headings outrank body prose.
func DefaultWeights() Weights {
	return Weights{
		Cosine:  0.7,
		Persona: 0.3,
		LevelMultiplier: map[structure.HeadingLevel]float64{
			structure.LevelTitle: 1.0,
			structure.LevelH1:    1.0,
			structure.LevelH2:    0.9,
			structure.LevelH3:    0.8,
			structure.LevelBody:  0.7,
		},
		PositionBonus: 0.05,
	}
}

// Query is one ranking request: the resolved persona plus the job to be done
// and an optional free-text question.
type Query struct {
	Profile  persona.Profile
	Job      string
	Question string
}

// Terms returns the query's raw term-frequency vector: job and question
// tokens at their occurrence counts, persona vocabulary terms boosted by
// their weights.
func (q Query) Terms() map[string]float64 {
	tf := make(map[string]float64)
	for _, w := range tokenize.Words(q.Job + " " + q.Question) {
		tf[w]++
	}
	for term, weight := range q.Profile.Vocabulary {
		tf[term] += weight * personaTermBoost
	}
	return tf
}

// Ranked is one scored section with its final importance rank (1 = most
// relevant).
type Ranked struct {
	Section        section.Section
	Score          float64
	ImportanceRank int
}

// Rank scores every section in the index and returns them ordered by
// descending score with contiguous ranks assigned. Ties keep corpus order.
//
// The context bounds scoring work: once it is done, remaining sections keep
// a zero score but still receive ranks, and the returned flag reports the
// truncation. Deadline expiry is never an error.
func Rank(ctx context.Context, ix *index.Index, q Query, w Weights) ([]Ranked, bool) {
	n := ix.Len()
	ranked := make([]Ranked, n)
	for i := 0; i < n; i++ {
		ranked[i] = Ranked{Section: ix.Section(i)}
	}
	if n == 0 {
		return ranked, false
	}

	qvec := ix.QueryVector(q.Terms())
	positions := documentPositions(ix)
	truncated := false

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			truncated = true
		default:
		}
		if truncated {
			break
		}
		ranked[i].Score = scoreSection(ix, i, qvec, q.Profile.Vocabulary, positions[i], w)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranked[order[a]].Score > ranked[order[b]].Score
	})

	out := make([]Ranked, n)
	for pos, idx := range order {
		out[pos] = ranked[idx]
		out[pos].ImportanceRank = pos + 1
	}
	return out, truncated
}

// scoreSection computes the blended score for one section, clamped to [0,1].
func scoreSection(ix *index.Index, i int, qvec map[string]float64, vocab map[string]float64, pos docPosition, w Weights) float64 {
	cosine := index.Cosine(qvec, ix.Vector(i))
	alignment := personaAlignment(ix.Terms(i), vocab)

	score := w.Cosine*cosine + w.Persona*alignment

	sec := ix.Section(i)
	if mult, ok := w.LevelMultiplier[sec.Level]; ok {
		score *= mult
	}

	// Earlier sections within a document get a small lead; a document with a
	// single section takes the full bonus.
	frac := 1.0
	if pos.total > 1 {
		frac = 1 - float64(pos.ordinal)/float64(pos.total-1)
	}
	score *= 1 + w.PositionBonus*frac

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// personaAlignment is the fraction of a section's distinct terms weighted by
// the persona vocabulary: sum of matched term weights over distinct term
// count.
func personaAlignment(terms []string, vocab map[string]float64) float64 {
	if len(terms) == 0 || len(vocab) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range terms {
		if w, ok := vocab[t]; ok {
			sum += w
		}
	}
	return sum / float64(len(terms))
}

type docPosition struct {
	ordinal int // zero-based position within the document
	total   int // section count for the document
}

// documentPositions computes each section's ordinal within its source
// document, in corpus order.
func documentPositions(ix *index.Index) []docPosition {
	n := ix.Len()
	counts := make(map[string]int, 8)
	positions := make([]docPosition, n)
	for i := 0; i < n; i++ {
		doc := ix.Section(i).Document
		positions[i].ordinal = counts[doc]
		counts[doc]++
	}
	for i := 0; i < n; i++ {
		positions[i].total = counts[ix.Section(i).Document]
	}
	return positions
}
