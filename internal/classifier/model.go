// internal/classifier/model.go
package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"intentrisk-workers/internal/features"

	"github.com/xeipuuv/gojsonschema"
)

// Artifact bundle file names. All three must be present and consistent or
// the bundle is rejected and the process stays on the rule strategy.
const (
	modelFile    = "model.json"
	scalerFile   = "scaler.json"
	metadataFile = "metadata.json"
)

// metadataSchema guards the shape of metadata.json before we trust any of
// its fields.
const metadataSchema = `{
	"type": "object",
	"required": ["feature_names", "decision_labels", "version"],
	"properties": {
		"feature_names":   {"type": "array", "items": {"type": "string"}},
		"decision_labels": {"type": "array", "items": {"type": "string"}},
		"training_samples": {"type": "integer", "minimum": 0},
		"test_accuracy":   {"type": "number", "minimum": 0, "maximum": 1},
		"version":         {"type": "string", "minLength": 1}
	}
}`

type modelParams struct {
	Type         string      `json:"type"` // "logistic_regression" or "hard"
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

type scalerParams struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

type artifactMetadata struct {
	FeatureNames    []string `json:"feature_names"`
	DecisionLabels  []string `json:"decision_labels"`
	TrainingSamples int      `json:"training_samples"`
	TestAccuracy    float64  `json:"test_accuracy"`
	Version         string   `json:"version"`
}

// ModelStrategy runs inference against a loaded artifact bundle. The
// bundle is immutable after load and shared read-only across goroutines.
type ModelStrategy struct {
	model  modelParams
	scaler scalerParams
	meta   artifactMetadata
}

// LoadModelStrategy reads and validates an artifact bundle directory. Any
// missing file, schema violation, or feature-order mismatch is an error;
// callers treat every error here as "model unavailable" and fall back to
// rules without surfacing anything to users.
func LoadModelStrategy(dir string) (*ModelStrategy, error) {
	metaRaw, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(metadataSchema),
		gojsonschema.NewBytesLoader(metaRaw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate metadata: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("metadata schema violation: %v", result.Errors())
	}

	var meta artifactMetadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	if len(meta.FeatureNames) != features.Size {
		return nil, fmt.Errorf("metadata lists %d features, expected %d", len(meta.FeatureNames), features.Size)
	}
	for i, name := range meta.FeatureNames {
		if name != features.Names[i] {
			return nil, fmt.Errorf("feature order mismatch at %d: artifact %q, engine %q", i, name, features.Names[i])
		}
	}
	if len(meta.DecisionLabels) != len(Labels) {
		return nil, fmt.Errorf("metadata lists %d labels, expected %d", len(meta.DecisionLabels), len(Labels))
	}

	var model modelParams
	if err := readJSON(filepath.Join(dir, modelFile), &model); err != nil {
		return nil, err
	}
	var scaler scalerParams
	if err := readJSON(filepath.Join(dir, scalerFile), &scaler); err != nil {
		return nil, err
	}

	if len(scaler.Mean) != features.Size || len(scaler.Std) != features.Size {
		return nil, fmt.Errorf("scaler dimensions %d/%d, expected %d", len(scaler.Mean), len(scaler.Std), features.Size)
	}
	if len(model.Coefficients) != len(meta.DecisionLabels) {
		return nil, fmt.Errorf("model has %d coefficient rows, expected %d", len(model.Coefficients), len(meta.DecisionLabels))
	}
	for i, row := range model.Coefficients {
		if len(row) != features.Size {
			return nil, fmt.Errorf("coefficient row %d has %d entries, expected %d", i, len(row), features.Size)
		}
	}
	if len(model.Intercepts) != len(meta.DecisionLabels) {
		return nil, fmt.Errorf("model has %d intercepts, expected %d", len(model.Intercepts), len(meta.DecisionLabels))
	}

	return &ModelStrategy{model: model, scaler: scaler, meta: meta}, nil
}

func readJSON(path string, dst interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (m *ModelStrategy) Version() string {
	return m.meta.Version
}

// Metadata returns training provenance for logging and health output.
func (m *ModelStrategy) Metadata() (trainingSamples int, testAccuracy float64) {
	return m.meta.TrainingSamples, m.meta.TestAccuracy
}

// Predict scales the vector, scores each class, and converts scores to
// per-label probabilities. Signals are ignored: the trained model sees
// only the canonical vector.
func (m *ModelStrategy) Predict(v features.Vector, _ *Signals) Prediction {
	scaled := make([]float64, features.Size)
	for i := 0; i < features.Size; i++ {
		std := m.scaler.Std[i]
		if std == 0 {
			std = 1
		}
		scaled[i] = (v[i] - m.scaler.Mean[i]) / std
	}

	raw := make([]float64, len(m.model.Coefficients))
	for c, row := range m.model.Coefficients {
		score := m.model.Intercepts[c]
		for i, w := range row {
			score += w * scaled[i]
		}
		raw[c] = score
	}

	var probs []float64
	if m.model.Type == "hard" {
		// Hard-prediction models expose no probabilities: one-hot the
		// winning class.
		probs = make([]float64, len(raw))
		probs[argMax(raw)] = 1
	} else {
		probs = softmax(raw)
	}

	best := argMax(probs)
	label := Label(m.meta.DecisionLabels[best])

	scores := make(map[string]float64, len(probs))
	for c, p := range probs {
		scores[m.meta.DecisionLabels[c]] = p
	}

	return Prediction{
		Label:        label,
		Confidence:   probs[best],
		Scores:       scores,
		Reasons:      ReasonsFor(label),
		ModelVersion: m.meta.Version,
	}
}

func softmax(xs []float64) []float64 {
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		out[i] = math.Exp(x - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argMax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
