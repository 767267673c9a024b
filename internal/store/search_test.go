// internal/store/search_test.go
package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrisk-workers/internal/engine"
)

func newTestIndex(t *testing.T, handler http.HandlerFunc) *AssessmentIndex {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewAssessmentIndex(client)
}

func esOK(w http.ResponseWriter) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{"result":"created"}`))
}

// ==========================
// Index Tests
// ==========================

func TestIndexAnalysis_WritesSubjectScopedDocument(t *testing.T) {
	var gotPath string
	var gotDoc AssessmentDoc

	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotDoc)
		esOK(w)
	})

	analysis := &engine.Analysis{
		Label:        "REJECT",
		Confidence:   0.62,
		Scores:       map[string]float64{"PROCEED": 0.1, "VERIFY": 0.28, "REJECT": 0.62},
		Reasons:      []string{"Suspicious patterns detected"},
		ModelVersion: "risk-2.3.0",
		AnalyzedAt:   time.Now().UTC(),
	}

	err := idx.IndexAnalysis(context.Background(), "call", "call-001", "job-001", analysis)
	require.NoError(t, err)

	// Document ID is subject-scoped, so re-analysis replaces the doc.
	assert.Equal(t, "/risk-assessments/_doc/call:call-001", gotPath)
	assert.Equal(t, "call-001", gotDoc.SubjectID)
	assert.Equal(t, "call", gotDoc.SubjectType)
	assert.Equal(t, "job-001", gotDoc.JobID)
	assert.Equal(t, "REJECT", gotDoc.Label)
	assert.InDelta(t, 0.62, gotDoc.Confidence, 0.001)
}

func TestIndexAnalysis_ServerErrorSurfaces(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"shard failure"}`))
	})

	err := idx.IndexAnalysis(context.Background(), "interview", "iv-001", "job-001", &engine.Analysis{})
	assert.Error(t, err)
}
