// internal/classifier/prediction.go
package classifier

import "sort"

// Label is the three-way risk decision. The interview path presents
// PROCEED as APPROVE, but that aliasing happens at the decision policy,
// never here.
type Label string

const (
	LabelProceed Label = "PROCEED"
	LabelVerify  Label = "VERIFY"
	LabelReject  Label = "REJECT"
)

// Labels lists the closed label set.
var Labels = []Label{LabelProceed, LabelVerify, LabelReject}

// Prediction is the structurally identical output of both strategies.
// For a healthy prediction the scores sum to 1±1e-3, Label is the arg-max
// and Confidence equals its score. A recovered classifier failure returns
// the REJECT-biased zero-confidence default instead.
type Prediction struct {
	Label        Label              `json:"label"`
	Confidence   float64            `json:"confidence"`
	Scores       map[string]float64 `json:"scores"`
	Reasons      []string           `json:"reasons"`
	ModelVersion string             `json:"modelVersion"`
}

// LabelScore pairs a label with its normalized score.
type LabelScore struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// SortedScores returns scores in descending order for presentation.
func (p Prediction) SortedScores() []LabelScore {
	out := make([]LabelScore, 0, len(p.Scores))
	for l, s := range p.Scores {
		out = append(out, LabelScore{Label: Label(l), Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// reasonTemplates holds the fixed reason strings per winning label.
var reasonTemplates = map[Label][]string{
	LabelProceed: {"Clear communication patterns", "No significant risk indicators"},
	LabelVerify:  {"Mixed signals detected", "Additional verification recommended"},
	LabelReject:  {"Suspicious patterns detected", "High-risk indicators found"},
}

// ReasonsFor returns a copy of the reason templates for a label.
func ReasonsFor(label Label) []string {
	src := reasonTemplates[label]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// rejectDefault is the degraded output after a recovered internal failure.
func rejectDefault(diagnostic string) Prediction {
	return Prediction{
		Label:      LabelReject,
		Confidence: 0,
		Scores: map[string]float64{
			string(LabelProceed): 0,
			string(LabelVerify):  0,
			string(LabelReject):  0,
		},
		Reasons:      []string{diagnostic},
		ModelVersion: "error",
	}
}
