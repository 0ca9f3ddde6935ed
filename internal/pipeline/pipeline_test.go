package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dghofer/docsight/internal/answer"
	"github.com/dghofer/docsight/internal/fragment"
	"github.com/dghofer/docsight/internal/metrics"
	"github.com/dghofer/docsight/internal/rank"
)

func reportDoc(id string) fragment.Document {
	return fragment.Document{
		ID:    id,
		Title: "Quarterly Report",
		Pages: []fragment.Page{
			{Number: 1, Fragments: []fragment.TextFragment{
				{Text: "Quarterly Report", FontSize: 28, Bold: true, Top: 0.1, Page: 1, Document: id},
				{Text: "1. Revenue Overview", FontSize: 18, Bold: true, Top: 0.3, Page: 1, Document: id},
				{Text: "Revenue grew steadily across all product segments this quarter driven by renewals.", FontSize: 11, Top: 0.4, Page: 1, Document: id},
			}},
			{Number: 2, Fragments: []fragment.TextFragment{
				{Text: "2. Market Outlook", FontSize: 18, Bold: true, Top: 0.1, Page: 2, Document: id},
				{Text: "Market trends suggest continued growth with moderate investment risk ahead.", FontSize: 11, Top: 0.2, Page: 2, Document: id},
			}},
		},
	}
}

func TestBuildIndex_ProducesOutlinesAndSections(t *testing.T) {
	docs := []fragment.Document{reportDoc("q1.pdf"), reportDoc("q2.pdf")}

	outlines, ix, err := BuildIndex(context.Background(), docs, 4, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outlines) != 2 {
		t.Fatalf("expected 2 outlines, got %d", len(outlines))
	}
	if outlines[0].Document != "q1.pdf" || outlines[1].Document != "q2.pdf" {
		t.Errorf("expected input document order preserved, got %s, %s",
			outlines[0].Document, outlines[1].Document)
	}
	if outlines[0].Title != "Quarterly Report" {
		t.Errorf("expected detected title, got %q", outlines[0].Title)
	}
	if len(outlines[0].Outline.Entries) != 2 {
		t.Errorf("expected 2 headings in outline, got %d", len(outlines[0].Outline.Entries))
	}
	if ix.Len() == 0 {
		t.Error("expected indexed sections")
	}
}

func TestBuildIndex_DeterministicAcrossRuns(t *testing.T) {
	docs := []fragment.Document{reportDoc("a.pdf"), reportDoc("b.pdf"), reportDoc("c.pdf")}

	run := func() []byte {
		outlines, ix, err := BuildIndex(context.Background(), docs, 3, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result := RunQuery(context.Background(), ix, nil,
			QueryParams{Persona: "Investment Analyst", Job: "Analyze revenue trends"},
			nil, rank.DefaultWeights(), answer.DefaultConfig(), nil)
		result.Metadata.ProcessedAt = time.Time{}
		data, err := json.Marshal(struct {
			Outlines []DocumentOutline
			Result   QueryResult
		}{outlines, result})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}

	first := run()
	second := run()
	if string(first) != string(second) {
		t.Error("expected byte-identical output for identical input")
	}
}

func TestRunQuery_DeadlineTruncatesButRanksEverything(t *testing.T) {
	docs := []fragment.Document{reportDoc("a.pdf"), reportDoc("b.pdf")}
	_, ix, err := BuildIndex(context.Background(), docs, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := RunQuery(ctx, ix, nil,
		QueryParams{Persona: "Investment Analyst", Job: "Analyze revenue"},
		nil, rank.DefaultWeights(), answer.DefaultConfig(), nil)
	if !result.Truncated {
		t.Error("expected truncated result under expired context")
	}
	if len(result.ExtractedSections) != ix.Len() {
		t.Errorf("truncation must not drop sections: got %d of %d",
			len(result.ExtractedSections), ix.Len())
	}
	for i, s := range result.ExtractedSections {
		if s.ImportanceRank != i+1 {
			t.Errorf("expected contiguous ranks, got %d at %d", s.ImportanceRank, i)
		}
	}
}

func TestRunQuery_LimitPrefersRelevantSections(t *testing.T) {
	docs := []fragment.Document{reportDoc("a.pdf")}
	_, ix, err := BuildIndex(context.Background(), docs, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := RunQuery(context.Background(), ix, nil,
		QueryParams{Persona: "Investment Analyst", Job: "Analyze revenue trends", Limit: 2},
		nil, rank.DefaultWeights(), answer.DefaultConfig(), nil)
	if len(result.ExtractedSections) != 2 {
		t.Fatalf("expected 2 sections with limit, got %d", len(result.ExtractedSections))
	}
	if result.ExtractedSections[0].ImportanceRank != 1 {
		t.Errorf("expected the top-ranked section first, got rank %d",
			result.ExtractedSections[0].ImportanceRank)
	}

	// A query matching nothing still returns limited sections.
	result = RunQuery(context.Background(), ix, nil,
		QueryParams{Persona: "nobody in particular", Job: "xylophone zymurgy", Limit: 1},
		nil, rank.DefaultWeights(), answer.DefaultConfig(), nil)
	if len(result.ExtractedSections) != 1 {
		t.Errorf("expected 1 section even with no relevant matches, got %d",
			len(result.ExtractedSections))
	}
}

func TestNewCollection_IDIsContentDerived(t *testing.T) {
	files := []InputFile{{Name: "a.txt", Data: []byte("hello")}}
	c1 := NewCollection(files)
	c2 := NewCollection(files)
	if c1.ID != c2.ID {
		t.Errorf("expected identical IDs for identical content, got %s and %s", c1.ID, c2.ID)
	}
	c3 := NewCollection([]InputFile{{Name: "a.txt", Data: []byte("other")}})
	if c3.ID == c1.ID {
		t.Error("expected different ID for different content")
	}
	c4 := NewCollection([]InputFile{{Name: "b.txt", Data: []byte("hello")}})
	if c4.ID == c1.ID {
		t.Error("expected different ID for renamed file")
	}
	if c1.ContentHash != ContentHashHex(files) {
		t.Error("expected collection hash to match the file-set digest")
	}
}

func TestBuildIndex_RecordsPhaseTimings(t *testing.T) {
	rec := metrics.NewRecorder(time.Minute)
	docs := []fragment.Document{reportDoc("a.pdf"), reportDoc("b.pdf")}
	if _, _, err := BuildIndex(context.Background(), docs, 2, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := rec.Snapshot()
	for _, phase := range []metrics.Phase{metrics.PhaseNormalize, metrics.PhaseStructure, metrics.PhaseIndex} {
		s, ok := snap[phase]
		if !ok {
			t.Errorf("expected %s phase recorded", phase)
			continue
		}
		if phase != metrics.PhaseIndex && s.Count != len(docs) {
			t.Errorf("expected one %s sample per document, got %d", phase, s.Count)
		}
	}
}

func TestStore_TTLEviction(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	c := NewCollection([]InputFile{{Name: "a.txt", Data: []byte("x")}})
	store.Put(c)

	if store.Get(c.ID) == nil {
		t.Fatal("expected collection present before expiry")
	}
	time.Sleep(25 * time.Millisecond)
	store.Cleanup()
	if store.Get(c.ID) != nil {
		t.Error("expected collection evicted after TTL")
	}
}

func TestCollection_IndexGatedOnReady(t *testing.T) {
	c := NewCollection([]InputFile{{Name: "a.txt", Data: []byte("x")}})
	if c.Index() != nil {
		t.Error("queued collection must not expose an index")
	}

	_, ix, err := BuildIndex(context.Background(), []fragment.Document{reportDoc("a.pdf")}, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.SetResult(nil, ix)
	if c.Index() == nil {
		t.Error("ready collection must expose its index")
	}
	if c.Snapshot().Status != StatusReady {
		t.Errorf("expected ready status, got %s", c.Snapshot().Status)
	}
}

func TestOrchestrator_QueryUnknownCollection(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil, testLogger())
	if _, err := o.Query(context.Background(), "missing", QueryParams{Persona: "analyst", Job: "job"}); err == nil {
		t.Error("expected error for unknown collection")
	}
}
