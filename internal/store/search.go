// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"intentrisk-workers/internal/engine"

	"github.com/elastic/go-elasticsearch/v8"
)

// AssessmentIndexName is the Elasticsearch index completed analyses land
// in for admin search.
const AssessmentIndexName = "risk-assessments"

// AssessmentDoc is the indexed shape of one completed analysis.
type AssessmentDoc struct {
	SubjectID    string             `json:"subjectId"`
	SubjectType  string             `json:"subjectType"` // "call" or "interview"
	JobID        string             `json:"jobId"`
	Label        string             `json:"label"`
	Confidence   float64            `json:"confidence"`
	Scores       map[string]float64 `json:"scores"`
	Reasons      []string           `json:"reasons"`
	ModelVersion string             `json:"modelVersion"`
	AnalyzedAt   time.Time          `json:"analyzedAt"`
}

// AssessmentIndex writes completed analyses into Elasticsearch.
type AssessmentIndex struct {
	client *elasticsearch.Client
}

func NewAssessmentIndex(client *elasticsearch.Client) *AssessmentIndex {
	return &AssessmentIndex{client: client}
}

// IndexAnalysis upserts the assessment document. The document ID is the
// subject ID, so re-analysis replaces the prior document instead of
// accumulating duplicates.
func (idx *AssessmentIndex) IndexAnalysis(ctx context.Context, subjectType, subjectID, jobID string, analysis *engine.Analysis) error {
	doc := AssessmentDoc{
		SubjectID:    subjectID,
		SubjectType:  subjectType,
		JobID:        jobID,
		Label:        analysis.Label,
		Confidence:   analysis.Confidence,
		Scores:       analysis.Scores,
		Reasons:      analysis.Reasons,
		ModelVersion: analysis.ModelVersion,
		AnalyzedAt:   analysis.AnalyzedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := idx.client.Index(
		AssessmentIndexName,
		bytes.NewReader(body),
		idx.client.Index.WithDocumentID(subjectType+":"+subjectID),
		idx.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index assessment: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index assessment: %s", res.Status())
	}
	return nil
}
