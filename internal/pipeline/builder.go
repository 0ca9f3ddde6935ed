package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dghofer/docsight/internal/answer"
	"github.com/dghofer/docsight/internal/fragment"
	"github.com/dghofer/docsight/internal/index"
	"github.com/dghofer/docsight/internal/metrics"
	"github.com/dghofer/docsight/internal/persona"
	"github.com/dghofer/docsight/internal/rank"
	"github.com/dghofer/docsight/internal/section"
	"github.com/dghofer/docsight/internal/structure"
)

// BuildIndex runs the structure phase over every document with bounded
// concurrency, then assembles one index over all sections. Output order
// follows input document order regardless of which document finishes first,
// so the same corpus always produces the same index.
func BuildIndex(ctx context.Context, docs []fragment.Document, maxConcurrent int, rec *metrics.Recorder) ([]DocumentOutline, *index.Index, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	type docResult struct {
		outline  DocumentOutline
		sections []section.Section
		err      error
	}
	results := make([]docResult, len(docs))
	sem := make(chan struct{}, maxConcurrent)
	done := make(chan int, len(docs))

	for i := range docs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
		go func(i int) {
			defer func() { <-sem }()
			outline, sections, err := processDocument(docs[i], rec)
			results[i] = docResult{outline: outline, sections: sections, err: err}
			done <- i
		}(i)
	}
	for range docs {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	outlines := make([]DocumentOutline, 0, len(docs))
	var all []section.Section
	for i, r := range results {
		if r.err != nil {
			return nil, nil, fmt.Errorf("document %q: %w", docs[i].ID, r.err)
		}
		outlines = append(outlines, r.outline)
		all = append(all, r.sections...)
	}

	start := time.Now()
	ix := index.Build(all)
	if rec != nil {
		rec.Record(metrics.PhaseIndex, time.Since(start))
	}
	return outlines, ix, nil
}

// processDocument runs normalize, detect and assemble for one document.
func processDocument(doc fragment.Document, rec *metrics.Recorder) (DocumentOutline, []section.Section, error) {
	start := time.Now()
	frags := fragment.Normalize(doc)
	if rec != nil {
		rec.Record(metrics.PhaseNormalize, time.Since(start))
	}

	start = time.Now()
	outline, classified := structure.Detect(doc.Title, frags)
	sections := section.Assemble(doc.ID, outline.Title, classified)
	if rec != nil {
		rec.Record(metrics.PhaseStructure, time.Since(start))
	}
	return DocumentOutline{
		Document: doc.ID,
		Title:    outline.Title,
		Outline:  outline,
	}, sections, nil
}

// minRelevanceFloor is the score below which a section is considered noise
// when a result limit is in effect.
const minRelevanceFloor = 0.05

// QueryParams carries one query's inputs. Question is optional free text
// beyond the job; Limit > 0 caps the extracted sections, preferring those
// above the relevance floor.
type QueryParams struct {
	Persona  string
	Job      string
	Question string
	Limit    int
}

// RunQuery ranks an already-built index for a persona and job, then refines
// the top sections. The context carries the soft deadline: expiry truncates
// work instead of failing the query.
func RunQuery(ctx context.Context, ix *index.Index, inputDocs []string, p QueryParams, vocabs persona.Vocabularies, w rank.Weights, acfg answer.Config, rec *metrics.Recorder) QueryResult {
	profile := persona.Resolve(p.Persona, vocabs)
	q := rank.Query{Profile: profile, Job: p.Job, Question: p.Question}

	rankStart := time.Now()
	ranked, rankTruncated := rank.Rank(ctx, ix, q, w)
	if rec != nil {
		rec.Record(metrics.PhaseRank, time.Since(rankStart))
	}

	synthStart := time.Now()
	answers, synthTruncated := answer.Synthesize(ctx, ix, ranked, q.Terms(), acfg)
	if rec != nil {
		rec.Record(metrics.PhaseSynthesis, time.Since(synthStart))
	}

	selected := limitRanked(ranked, p.Limit)
	extracted := make([]ExtractedSection, len(selected))
	for i, r := range selected {
		extracted[i] = ExtractedSection{
			Document:       r.Section.Document,
			SectionTitle:   r.Section.Title,
			Level:          r.Section.Level,
			PageNumber:     r.Section.StartPage,
			ImportanceRank: r.ImportanceRank,
			Score:          r.Score,
		}
	}

	return QueryResult{
		Metadata: Metadata{
			InputDocuments: inputDocs,
			Persona:        p.Persona,
			JobToBeDone:    p.Job,
			ProcessedAt:    time.Now().UTC(),
		},
		ExtractedSections:  extracted,
		SubsectionAnalysis: answers,
		Truncated:          rankTruncated || synthTruncated,
	}
}

// limitRanked caps the ranked list at limit sections, preferring those above
// the relevance floor. When nothing clears the floor the top sections are
// returned anyway: an all-zero ranking is still a ranking.
func limitRanked(ranked []rank.Ranked, limit int) []rank.Ranked {
	if limit <= 0 || limit >= len(ranked) {
		return ranked
	}
	above := make([]rank.Ranked, 0, limit)
	for _, r := range ranked {
		if r.Score >= minRelevanceFloor {
			above = append(above, r)
			if len(above) == limit {
				break
			}
		}
	}
	if len(above) == 0 {
		return ranked[:limit]
	}
	return above
}
