// Package answer extracts short refined passages from the top-ranked
// sections. For each selected section it scores individual sentences
// against the query and stitches the best ones back together in their
// original order.
package answer

import (
	"context"
	"sort"
	"strings"

	"github.com/dghofer/docsight/internal/index"
	"github.com/dghofer/docsight/internal/rank"
	"github.com/dghofer/docsight/internal/tokenize"
)

// previewLen bounds the fallback excerpt when no sentence qualifies.
const previewLen = 200

// Config bounds synthesis work and tunes sentence selection.
type Config struct {
	TopSections    int     // sections to refine, in rank order
	TopSentences   int     // sentences kept per section
	MinSentenceLen int     // below this, a length penalty applies
	MaxSentenceLen int     // above this, a length penalty applies
	EdgeBonus      float64 // bonus for a section's first or last sentence
	LengthPenalty  float64 // penalty for sentences outside the length window
}

// DefaultConfig returns the standard synthesis parameters.
func DefaultConfig() Config {
	return Config{
		TopSections:    5,
		TopSentences:   3,
		MinSentenceLen: 40,
		MaxSentenceLen: 300,
		EdgeBonus:      0.15,
		LengthPenalty:  0.25,
	}
}

// Answer is one refined passage attributed to its source section.
type Answer struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"sectionTitle"`
	Page           int    `json:"pageNumber"`
	Text           string `json:"refinedText"`
	ImportanceRank int    `json:"importanceRank"`
}

// Synthesize refines the top-ranked sections into short passages. Sections
// with empty bodies are skipped. The context bounds the work the same way
// ranking is bounded: once expired, already-synthesized answers are returned
// with a true truncation flag.
func Synthesize(ctx context.Context, ix *index.Index, ranked []rank.Ranked, queryTerms map[string]float64, cfg Config) ([]Answer, bool) {
	answers := make([]Answer, 0, cfg.TopSections)
	taken := 0
	for _, r := range ranked {
		if taken >= cfg.TopSections {
			break
		}
		select {
		case <-ctx.Done():
			return answers, true
		default:
		}
		body := strings.TrimSpace(r.Section.Body)
		if body == "" {
			continue
		}
		taken++
		answers = append(answers, Answer{
			Document:       r.Section.Document,
			SectionTitle:   r.Section.Title,
			Page:           r.Section.StartPage,
			Text:           refine(ix, body, queryTerms, cfg),
			ImportanceRank: r.ImportanceRank,
		})
	}
	return answers, false
}

// refine picks the best sentences of a body and joins them in their
// original order. A body with no scoreable sentence falls back to a
// truncated excerpt.
func refine(ix *index.Index, body string, queryTerms map[string]float64, cfg Config) string {
	sentences := tokenize.Sentences(body)
	if len(sentences) == 0 {
		return preview(body)
	}
	if len(sentences) <= cfg.TopSentences {
		return strings.Join(sentences, " ")
	}

	type scored struct {
		pos   int
		score float64
	}
	all := make([]scored, len(sentences))
	for i, s := range sentences {
		all[i] = scored{pos: i, score: sentenceScore(ix, s, queryTerms, i, len(sentences), cfg)}
	}

	sort.SliceStable(all, func(a, b int) bool { return all[a].score > all[b].score })
	picked := all[:cfg.TopSentences]
	sort.Slice(picked, func(a, b int) bool { return picked[a].pos < picked[b].pos })

	parts := make([]string, len(picked))
	for i, p := range picked {
		parts[i] = sentences[p.pos]
	}
	return strings.Join(parts, " ")
}

// sentenceScore is IDF-weighted query overlap with a bonus for a section's
// opening and closing sentences and a penalty for sentences outside the
// preferred length window.
func sentenceScore(ix *index.Index, sentence string, queryTerms map[string]float64, pos, total int, cfg Config) float64 {
	score := 0.0
	seen := map[string]bool{}
	for _, w := range tokenize.Words(sentence) {
		if seen[w] {
			continue
		}
		seen[w] = true
		if queryTerms[w] > 0 {
			score += ix.IDF(w)
		}
	}

	if pos == 0 || pos == total-1 {
		score += cfg.EdgeBonus
	}
	if n := len(sentence); n < cfg.MinSentenceLen || n > cfg.MaxSentenceLen {
		score -= cfg.LengthPenalty
	}
	return score
}

// preview truncates a body at a word boundary near previewLen runes.
func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLen {
		return body
	}
	cut := string(runes[:previewLen])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
