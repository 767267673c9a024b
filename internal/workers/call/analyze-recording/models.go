// internal/workers/call/analyze-recording/models.go
package analyzerecording

type Input struct {
	CallID        string `json:"callId"`
	UserID        string `json:"userId"`
	AudioBase64   string `json:"audioBase64"`
	RecordingPath string `json:"recordingPath,omitempty"`
	Transcript    string `json:"transcript,omitempty"`
}

type Output struct {
	CallID       string             `json:"callId"`
	Intent       string             `json:"intent"` // PROCEED, VERIFY, REJECT
	Confidence   float64            `json:"confidence"`
	Scores       map[string]float64 `json:"scores"`
	Reasons      []string           `json:"reasons"`
	ModelVersion string             `json:"modelVersion"`
	AnalyzedAt   string             `json:"analyzedAt"` // ISO 8601
}
