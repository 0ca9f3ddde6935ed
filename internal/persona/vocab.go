package persona

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Vocabularies maps a persona category to its weighted vocabulary:
// term -> relevance weight in (0,1].
type Vocabularies map[Category]map[string]float64

// BuiltinVocabularies returns the curated default vocabulary table. Weights
// reflect how strongly a term signals content the persona cares about.
func BuiltinVocabularies() Vocabularies {
	return Vocabularies{
		CategoryResearcher: {
			"methodology": 1.0, "analysis": 1.0, "results": 1.0, "findings": 1.0,
			"experiment": 1.0, "data": 0.8, "study": 0.8, "research": 0.8,
			"hypothesis": 0.8, "conclusion": 0.8, "algorithm": 0.6,
			"evaluation": 0.6, "benchmark": 0.6, "dataset": 0.6,
			"statistical": 0.6, "empirical": 0.4, "validation": 0.4,
			"theoretical": 0.4, "literature": 0.4,
		},
		CategoryStudent: {
			"definition": 1.0, "example": 1.0, "concept": 1.0, "principle": 1.0,
			"theory": 1.0, "formula": 0.8, "explanation": 0.8, "mechanism": 0.8,
			"process": 0.8, "learn": 0.8, "understand": 0.6, "exam": 0.6,
			"chapter": 0.6, "tutorial": 0.6, "homework": 0.4, "assignment": 0.4,
			"textbook": 0.4, "lecture": 0.4, "course": 0.4,
		},
		CategoryAnalyst: {
			"trend": 1.0, "growth": 1.0, "revenue": 1.0, "profit": 1.0,
			"investment": 1.0, "market": 0.8, "financial": 0.8,
			"performance": 0.8, "strategy": 0.8, "forecast": 0.8,
			"risk": 0.6, "opportunity": 0.6, "metrics": 0.6, "kpi": 0.6,
			"insights": 0.6, "correlation": 0.4, "regression": 0.4,
			"competitive": 0.4, "report": 0.4,
		},
		CategoryJournalist: {
			"source": 1.0, "facts": 1.0, "evidence": 1.0, "statement": 1.0,
			"development": 1.0, "news": 0.8, "report": 0.8, "interview": 0.8,
			"investigation": 0.8, "story": 0.8, "article": 0.6, "press": 0.6,
			"media": 0.6, "breaking": 0.6, "timeline": 0.4, "witness": 0.4,
		},
		CategoryBusiness: {
			"strategy": 1.0, "market": 1.0, "revenue": 1.0, "growth": 1.0,
			"customer": 1.0, "product": 0.8, "service": 0.8, "opportunity": 0.8,
			"innovation": 0.8, "implementation": 0.8, "stakeholder": 0.6,
			"roi": 0.6, "budget": 0.6, "planning": 0.6, "execution": 0.6,
			"leadership": 0.4, "project": 0.4, "goal": 0.4, "objective": 0.4,
		},
		CategoryGeneric: genericVocabulary(),
	}
}

// genericVocabulary is the uniform low-weight fallback for personas no
// category matches.
func genericVocabulary() map[string]float64 {
	terms := []string{
		"overview", "summary", "introduction", "key", "important",
		"information", "detail", "example", "main", "purpose",
		"background", "context", "description",
	}
	vocab := make(map[string]float64, len(terms))
	for _, t := range terms {
		vocab[t] = 0.2
	}
	return vocab
}

// vocabFile is the YAML shape for an injected vocabulary table.
type vocabFile struct {
	Personas map[string]map[string]float64 `yaml:"personas"`
}

// LoadVocabularies reads a vocabulary table from YAML, merging it over the
// builtin table so a file may override or extend individual categories:
//
//	personas:
//	  analyst:
//	    liquidity: 0.9
//	    margin: 0.8
func LoadVocabularies(r io.Reader) (Vocabularies, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var file vocabFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary file: %w", err)
	}

	vocabs := BuiltinVocabularies()
	for name, terms := range file.Personas {
		cat := Category(name)
		for term, weight := range terms {
			if weight <= 0 || weight > 1 {
				return nil, fmt.Errorf("persona %q term %q: weight %v outside (0,1]", name, term, weight)
			}
		}
		vocabs[cat] = terms
	}
	return vocabs, nil
}
