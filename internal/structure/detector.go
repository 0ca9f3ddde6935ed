package structure

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dghofer/docsight/internal/fragment"
)

const (
	// Length gate: fragments outside this rune window are forced to Body so
	// that paragraphs with transient bold runs never classify as headings.
	minHeadingLen = 3
	maxHeadingLen = 120

	// topThird marks the upper page region that earns a position bonus.
	topThird = 1.0 / 3.0

	// headingFloor is the minimum composite score a fragment needs before it
	// participates in the per-document heading tiering.
	headingFloor = 3

	// dupPageWindow is the page distance within which a repeated heading of
	// identical text and level collapses into its first occurrence.
	dupPageWindow = 2
)

// OutlineEntry is one detected heading, in document order.
type OutlineEntry struct {
	Level HeadingLevel `json:"level"`
	Text  string       `json:"text"`
	Page  int          `json:"page"`
}

// Outline is the structural result for one document.
type Outline struct {
	Title   string         `json:"title"`
	Entries []OutlineEntry `json:"outline"`
}

// Classified pairs a fragment with its detected heading level.
type Classified struct {
	Fragment fragment.TextFragment
	Level    HeadingLevel
	Score    int
}

// Detect classifies every fragment of one document as Title/H1/H2/H3/Body
// and produces the document outline. fallbackTitle (usually the document
// identifier) is used when no title can be detected; an empty fragment list
// yields an empty outline with that fallback title.
func Detect(fallbackTitle string, frags []fragment.TextFragment) (Outline, []Classified) {
	if len(frags) == 0 {
		return Outline{Title: fallbackTitle, Entries: []OutlineEntry{}}, nil
	}

	stats := ComputeFontStats(frags)

	scores := make([]int, len(frags))
	for i, f := range frags {
		scores[i] = CompositeScore(f, stats)
	}

	titleIdx := detectTitleIndex(frags, scores)

	tier := headingTiers(scores, titleIdx)

	classified := make([]Classified, len(frags))
	for i, f := range frags {
		level := LevelBody
		if i == titleIdx {
			level = LevelTitle
		} else if lv, ok := tier[scores[i]]; ok {
			level = lv
		}
		classified[i] = Classified{Fragment: f, Level: level, Score: scores[i]}
	}

	collapseDuplicates(classified)
	normalizeNesting(classified)

	title := fallbackTitle
	if titleIdx >= 0 {
		title = frags[titleIdx].Text
	}

	entries := []OutlineEntry{}
	for _, c := range classified {
		if c.Level == LevelTitle || c.Level == LevelBody {
			continue
		}
		entries = append(entries, OutlineEntry{
			Level: c.Level,
			Text:  c.Fragment.Text,
			Page:  c.Fragment.Page,
		})
	}

	return Outline{Title: title, Entries: entries}, classified
}

// CompositeScore rates how heading-like a fragment is given its document's
// font statistics. It is a pure function of the fragment and stats so each
// factor can be exercised in isolation: size tier 0-3 from percentile bands,
// +1 bold, +1 heading-shaped text, +1 top-third page position. Fragments
// outside the length window score zero regardless of style.
func CompositeScore(f fragment.TextFragment, stats FontStats) int {
	text := strings.TrimSpace(f.Text)
	n := len([]rune(text))
	if n < minHeadingLen || n > maxHeadingLen {
		return 0
	}

	score := sizeTier(f.FontSize, stats)
	if f.Bold {
		score++
	}
	if HeadingShaped(text) {
		score++
	}
	if f.Top <= topThird {
		score++
	}
	return score
}

func sizeTier(size float64, stats FontStats) int {
	switch {
	case size >= stats.P90 && stats.P90 > stats.Median:
		return 3
	case size > stats.P75 && stats.P75 > stats.Median:
		return 2
	case size > stats.Median:
		return 1
	default:
		return 0
	}
}

var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\s+\S`),                                     // "1. Introduction"
	regexp.MustCompile(`^\d+(\.\d+)+\.?[\s:]`),                            // "1.1 Background", "3.2: Analysis"
	regexp.MustCompile(`^[IVXLC]+\.\s+\S`),                                // "IV. Results"
	regexp.MustCompile(`(?i)^(chapter|section|part|appendix)\s+[A-Z0-9]`), // "Chapter 3", "Section A"
}

// HeadingShaped reports whether text looks like a heading by shape alone:
// leading numbering, chapter/section markers, or short all-caps text.
func HeadingShaped(text string) bool {
	for _, p := range headingPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return shortAllCaps(text)
}

func shortAllCaps(text string) bool {
	if len([]rune(text)) > 40 {
		return false
	}
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

var nonTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page\s+\d+`),
	regexp.MustCompile(`(?i)^(draft|preprint|typeset)\b`),
	regexp.MustCompile(`(?i)^arxiv:`),
	regexp.MustCompile(`(?i)^(www\.|https?://)`),
	regexp.MustCompile(`@[a-z0-9.-]+\.[a-z]`),
	regexp.MustCompile(`(?i)^abstract$`),
	regexp.MustCompile(`(?i)^keywords:`),
}

func nonTitleText(text string) bool {
	for _, p := range nonTitlePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// detectTitleIndex picks the highest-scoring first-page fragment in the top
// third of that page. Ties resolve to the earliest fragment. Returns -1 when
// no candidate qualifies.
func detectTitleIndex(frags []fragment.TextFragment, scores []int) int {
	best := -1
	bestScore := 0
	for i, f := range frags {
		if f.Page != firstPage(frags) || f.Top > topThird {
			continue
		}
		if nonTitleText(f.Text) || numberedHeading(f.Text) {
			continue
		}
		n := len([]rune(f.Text))
		if n < minHeadingLen || n > 200 {
			continue
		}
		if scores[i] > bestScore {
			best = i
			bestScore = scores[i]
		}
	}
	if best >= 0 {
		return best
	}

	// Fallback: the first substantial fragment on the first page.
	for i, f := range frags {
		if f.Page != firstPage(frags) || nonTitleText(f.Text) {
			continue
		}
		if n := len([]rune(f.Text)); n >= 5 && n <= 150 {
			return i
		}
	}
	return -1
}

func firstPage(frags []fragment.TextFragment) int {
	first := frags[0].Page
	for _, f := range frags {
		if f.Page < first {
			first = f.Page
		}
	}
	return first
}

// headingTiers maps the distinct composite scores observed in this document
// (at or above the heading floor, title excluded) to heading levels in
// descending order: largest tier becomes H1, the next H2, then H3. Scores
// beyond three tiers, and everything below the floor, stay Body. This
// per-document relative mapping replaces absolute thresholds.
func headingTiers(scores []int, titleIdx int) map[int]HeadingLevel {
	seen := map[int]bool{}
	for i, s := range scores {
		if i == titleIdx || s < headingFloor {
			continue
		}
		seen[s] = true
	}

	distinct := make([]int, 0, len(seen))
	for s := range seen {
		distinct = append(distinct, s)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(distinct)))

	tier := make(map[int]HeadingLevel, 3)
	levels := []HeadingLevel{LevelH1, LevelH2, LevelH3}
	for i, s := range distinct {
		if i >= len(levels) {
			break
		}
		tier[s] = levels[i]
	}
	return tier
}

// numberedHeading reports whether text carries explicit section numbering.
// Such fragments are section headings by construction and never titles.
func numberedHeading(text string) bool {
	for _, p := range headingPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// normalizeNesting caps depth jumps between consecutive headings at one
// level, so an H3 never appears directly after an H1 when the intermediate
// level exists only later in the document.
func normalizeNesting(classified []Classified) {
	prev := HeadingLevel(-1)
	for i := range classified {
		c := &classified[i]
		if c.Level == LevelTitle || c.Level == LevelBody {
			continue
		}
		if prev >= 0 && c.Level > prev+1 {
			c.Level = prev + 1
		}
		prev = c.Level
	}
}

// collapseDuplicates demotes headings that repeat with identical text and
// level within a small page window, keeping the first occurrence. Demoted
// fragments become Body so their text still folds into the open section.
func collapseDuplicates(classified []Classified) {
	type key struct {
		level HeadingLevel
		text  string
	}
	lastPage := map[key]int{}
	for i := range classified {
		c := &classified[i]
		if c.Level == LevelTitle || c.Level == LevelBody {
			continue
		}
		k := key{c.Level, strings.ToLower(c.Fragment.Text)}
		if page, ok := lastPage[k]; ok && c.Fragment.Page-page <= dupPageWindow {
			c.Level = LevelBody
			continue
		}
		lastPage[k] = c.Fragment.Page
	}
}
