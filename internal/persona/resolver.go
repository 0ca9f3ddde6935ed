// Package persona maps free-text role descriptions to canonical persona
// categories with weighted vocabularies. Resolution is a deterministic
// nearest-category lookup: any unrecognized persona degrades to the generic
// profile instead of failing.
package persona

import (
	"sort"
	"strings"

	"github.com/dghofer/docsight/internal/tokenize"
)

// Category is a canonical persona category.
type Category string

const (
	CategoryResearcher Category = "researcher"
	CategoryStudent    Category = "student"
	CategoryAnalyst    Category = "analyst"
	CategoryJournalist Category = "journalist"
	CategoryBusiness   Category = "business"
	CategoryGeneric    Category = "generic"
)

// aliases are role words that signal a category without appearing in its
// content vocabulary.
var aliases = map[Category][]string{
	CategoryResearcher: {"researcher", "scientist", "phd", "academic", "professor"},
	CategoryStudent:    {"student", "undergraduate", "learner", "pupil"},
	CategoryAnalyst:    {"analyst", "investment", "financial", "finance", "trader"},
	CategoryJournalist: {"journalist", "reporter", "editor", "correspondent"},
	CategoryBusiness:   {"business", "entrepreneur", "manager", "executive", "founder", "consultant"},
}

// minMatchScore is the threshold below which resolution falls back to the
// generic category.
const minMatchScore = 0.5

// Profile is the resolved persona: its category and weighted vocabulary.
type Profile struct {
	Category   Category
	Vocabulary map[string]float64
}

// Resolve maps a free-text role description to the closest persona category.
// Matching combines whole-word overlap between the role's tokens and each
// category's alias and vocabulary terms with case-insensitive substring
// containment of the category name itself.
func Resolve(role string, vocabs Vocabularies) Profile {
	if vocabs == nil {
		vocabs = BuiltinVocabularies()
	}

	lowerRole := strings.ToLower(role)
	tokens := map[string]bool{}
	for _, w := range tokenize.Words(role) {
		tokens[w] = true
	}

	best := CategoryGeneric
	bestScore := 0.0

	for _, cat := range orderedCategories(vocabs) {
		if cat == CategoryGeneric {
			continue
		}
		score := matchScore(cat, lowerRole, tokens, vocabs[cat])
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	if bestScore < minMatchScore {
		best = CategoryGeneric
	}

	vocab := vocabs[best]
	if vocab == nil {
		vocab = genericVocabulary()
	}
	return Profile{Category: best, Vocabulary: vocab}
}

func matchScore(cat Category, lowerRole string, tokens map[string]bool, vocab map[string]float64) float64 {
	score := 0.0
	if strings.Contains(lowerRole, string(cat)) {
		score += 3
	}
	for _, alias := range aliases[cat] {
		if tokens[alias] || strings.Contains(lowerRole, alias) {
			score += 2
		}
	}
	for term, weight := range vocab {
		if tokens[term] {
			score += weight
		}
	}
	return score
}

// orderedCategories returns categories in a fixed order so ties resolve
// deterministically.
func orderedCategories(vocabs Vocabularies) []Category {
	cats := make([]Category, 0, len(vocabs))
	for c := range vocabs {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
