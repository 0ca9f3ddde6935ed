package structure

import (
	"strings"
	"testing"

	"github.com/dghofer/docsight/internal/fragment"
)

func frag(text string, size float64, bold bool, top float64, page int) fragment.TextFragment {
	return fragment.TextFragment{Text: text, FontSize: size, Bold: bold, Top: top, Page: page, Document: "doc"}
}

func TestCompositeScore_Factors(t *testing.T) {
	stats := FontStats{Median: 10, P75: 12, P90: 16}

	cases := []struct {
		name string
		f    fragment.TextFragment
		want int
	}{
		{"body text at median", frag("plain paragraph text", 10, false, 0.5, 2), 0},
		{"large font only", frag("Some Heading", 17, false, 0.5, 2), 3},
		{"mid tier font", frag("Some Heading", 13, false, 0.5, 2), 2},
		{"bold adds one", frag("Some Heading", 13, true, 0.5, 2), 3},
		{"numbered pattern adds one", frag("1. Introduction", 13, true, 0.5, 2), 4},
		{"top third adds one", frag("1. Introduction", 13, true, 0.1, 2), 5},
		{"all caps counts as pattern", frag("REFERENCES", 10, false, 0.5, 2), 1},
	}

	for _, tc := range cases {
		if got := CompositeScore(tc.f, stats); got != tc.want {
			t.Errorf("%s: expected score %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestCompositeScore_LengthGateForcesBody(t *testing.T) {
	stats := FontStats{Median: 10, P75: 12, P90: 16}

	long := frag(strings.Repeat("bold run inside a paragraph ", 10), 18, true, 0.1, 1)
	if got := CompositeScore(long, stats); got != 0 {
		t.Errorf("expected 0 for over-length fragment, got %d", got)
	}

	short := frag("ab", 18, true, 0.1, 1)
	if got := CompositeScore(short, stats); got != 0 {
		t.Errorf("expected 0 for under-length fragment, got %d", got)
	}
}

func TestHeadingShaped_Patterns(t *testing.T) {
	shaped := []string{"1. Introduction", "2.3 Methods", "IV. Results", "Chapter 7", "Section A", "GENERAL INSTRUCTIONS"}
	for _, s := range shaped {
		if !HeadingShaped(s) {
			t.Errorf("expected %q to be heading shaped", s)
		}
	}
	unshaped := []string{"we present a model", "The results are clear.", strings.Repeat("ALLCAPS ", 10)}
	for _, s := range unshaped {
		if HeadingShaped(s) {
			t.Errorf("expected %q not to be heading shaped", s)
		}
	}
}

func TestDetect_RelativeTiering(t *testing.T) {
	// A large-print document: absolute sizes are big, but the relative
	// mapping should still produce H1 above H2.
	var frags []fragment.TextFragment
	frags = append(frags, frag("Annual Report", 40, true, 0.05, 1))
	frags = append(frags, frag("1. Financial Overview", 32, true, 0.2, 1))
	frags = append(frags, frag("1.1 Revenue", 26, true, 0.4, 1))
	for i := 0; i < 20; i++ {
		frags = append(frags, frag("Plain body text describing operational details over the year.", 18, false, 0.5, 1))
	}

	outline, classified := Detect("report", frags)

	if outline.Title != "Annual Report" {
		t.Errorf("expected title %q, got %q", "Annual Report", outline.Title)
	}
	if len(outline.Entries) != 2 {
		t.Fatalf("expected 2 outline entries, got %d: %+v", len(outline.Entries), outline.Entries)
	}
	if outline.Entries[0].Level != LevelH1 || outline.Entries[0].Text != "1. Financial Overview" {
		t.Errorf("expected first entry H1 %q, got %s %q", "1. Financial Overview", outline.Entries[0].Level, outline.Entries[0].Text)
	}
	if outline.Entries[1].Level != LevelH2 || outline.Entries[1].Text != "1.1 Revenue" {
		t.Errorf("expected second entry H2 %q, got %s %q", "1.1 Revenue", outline.Entries[1].Level, outline.Entries[1].Text)
	}

	if classified[0].Level != LevelTitle {
		t.Errorf("expected first fragment classified Title, got %s", classified[0].Level)
	}
	for _, c := range classified[3:] {
		if c.Level != LevelBody {
			t.Errorf("expected body fragment, got %s for %q", c.Level, c.Fragment.Text)
		}
	}
}

func TestDetect_NoStyledText_EmptyOutlineWithTitle(t *testing.T) {
	// Uniform font, no bold, no numbering: outline must be empty but a title
	// is still reported from the first substantial fragment.
	frags := []fragment.TextFragment{
		frag("Meeting notes from the quarterly sync", 12, false, 0.1, 1),
		frag("everyone agreed the rollout was on track", 12, false, 0.3, 1),
		frag("next steps were assigned to the platform team", 12, false, 0.5, 1),
	}

	outline, _ := Detect("notes.txt", frags)
	if len(outline.Entries) != 0 {
		t.Errorf("expected empty outline, got %+v", outline.Entries)
	}
	if outline.Title == "" {
		t.Error("expected non-empty title fallback")
	}
}

func TestDetect_EmptyInput(t *testing.T) {
	outline, classified := Detect("empty-doc", nil)
	if outline.Title != "empty-doc" {
		t.Errorf("expected fallback title %q, got %q", "empty-doc", outline.Title)
	}
	if len(outline.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(outline.Entries))
	}
	if classified != nil {
		t.Errorf("expected nil classification, got %v", classified)
	}
}

func TestDetect_DuplicateHeadingsCollapse(t *testing.T) {
	var frags []fragment.TextFragment
	frags = append(frags, frag("User Guide", 30, true, 0.05, 1))
	frags = append(frags, frag("Installation", 22, true, 0.2, 1))
	frags = append(frags, frag("Installation", 22, true, 0.1, 2)) // repeated within window
	frags = append(frags, frag("Installation", 22, true, 0.1, 8)) // far away, genuine re-occurrence
	for i := 0; i < 10; i++ {
		frags = append(frags, frag("step by step body content for the install procedure", 12, false, 0.5, 1))
	}

	outline, _ := Detect("guide", frags)

	count := 0
	for _, e := range outline.Entries {
		if e.Text == "Installation" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected duplicate heading collapsed to 2 occurrences, got %d: %+v", count, outline.Entries)
	}
}

func TestDetect_OutlineNesting_NoOrphanDeepLevels(t *testing.T) {
	var frags []fragment.TextFragment
	frags = append(frags, frag("Design Brief", 30, true, 0.05, 1))
	frags = append(frags, frag("1. Overview", 24, true, 0.2, 1))
	frags = append(frags, frag("1.1 Scope", 18, true, 0.4, 1))
	frags = append(frags, frag("2. Design", 24, true, 0.6, 1))
	for i := 0; i < 15; i++ {
		frags = append(frags, frag("descriptive body text for the surrounding report sections here", 11, false, 0.7, 1))
	}

	outline, _ := Detect("brief", frags)

	// Between consecutive entries the depth may only increase by one level.
	prev := LevelH1
	for i, e := range outline.Entries {
		if i > 0 && int(e.Level)-int(prev) > 1 {
			t.Errorf("entry %d jumps from %s to %s", i, prev, e.Level)
		}
		prev = e.Level
	}
}

func TestComputeFontStats_Percentiles(t *testing.T) {
	var frags []fragment.TextFragment
	for _, s := range []float64{10, 10, 10, 10, 10, 10, 12, 12, 18, 24} {
		frags = append(frags, frag("text sample", s, false, 0.5, 1))
	}
	stats := ComputeFontStats(frags)
	if stats.Median != 10 {
		t.Errorf("expected median 10, got %v", stats.Median)
	}
	if stats.P75 < 11 || stats.P75 > 12.5 {
		t.Errorf("expected p75 near 12, got %v", stats.P75)
	}
	if stats.P90 < 17 || stats.P90 > 24 {
		t.Errorf("expected p90 in [18,24], got %v", stats.P90)
	}
}
