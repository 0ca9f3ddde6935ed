package pipeline

import (
	"time"

	"github.com/dghofer/docsight/internal/answer"
	"github.com/dghofer/docsight/internal/structure"
)

// Metadata records what a query ran over and when.
type Metadata struct {
	InputDocuments []string  `json:"inputDocuments"`
	Persona        string    `json:"persona"`
	JobToBeDone    string    `json:"jobToBeDone"`
	ProcessedAt    time.Time `json:"processedAt"`
}

// ExtractedSection is one ranked section in a query result.
type ExtractedSection struct {
	Document       string                 `json:"document"`
	SectionTitle   string                 `json:"sectionTitle"`
	Level          structure.HeadingLevel `json:"level"`
	PageNumber     int                    `json:"pageNumber"`
	ImportanceRank int                    `json:"importanceRank"`
	Score          float64                `json:"score"`
}

// QueryResult is the full response to one persona query: every section
// ranked, plus refined passages for the top few. Truncated reports that the
// deadline expired before all scoring work finished; the ranking is still
// complete, later sections just carry unscored zeros.
type QueryResult struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extractedSections"`
	SubsectionAnalysis []answer.Answer    `json:"subsectionAnalysis"`
	Truncated          bool               `json:"truncated"`
}
