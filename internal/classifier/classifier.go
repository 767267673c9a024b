// internal/classifier/classifier.go

// Package classifier renders the three-way risk decision from a feature
// vector. Two interchangeable strategies exist: a trained-model artifact
// and a deterministic rule engine. Both produce structurally identical
// predictions and neither ever returns an error to a caller.
package classifier

import (
	"fmt"
	"sync"

	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/common/metrics"
	"intentrisk-workers/internal/features"
)

// Strategy is the common prediction contract. Implementations must be
// safe for concurrent use and must not panic out of Predict; the package
// wrapper recovers anyway as a last line of defense.
type Strategy interface {
	Predict(v features.Vector, sig *Signals) Prediction
	Version() string
}

// Options selects and locates the strategy.
type Options struct {
	ArtifactDir string
	// Strategy is "auto" (model when the artifact loads, rules otherwise),
	// "model", or "rules".
	Strategy string
	Logger   logger.Logger
}

var (
	mu     sync.Mutex
	active Strategy
)

// Get returns the process-wide strategy, constructing it on first call.
// The selection is made exactly once: a missing or invalid artifact
// silently pins the process to the rule engine until restart. Concurrent
// first callers serialize on the guard and observe the same instance.
func Get(opts Options) Strategy {
	mu.Lock()
	defer mu.Unlock()

	if active != nil {
		return active
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	switch opts.Strategy {
	case "rules":
		active = NewRuleStrategy()
	default:
		model, err := LoadModelStrategy(opts.ArtifactDir)
		if err != nil {
			if opts.Strategy == "model" {
				log.Error("model artifact rejected, falling back to rules", map[string]interface{}{
					"artifactDir": opts.ArtifactDir,
					"error":       err.Error(),
				})
			} else {
				log.Info("no usable model artifact, using rule engine", map[string]interface{}{
					"artifactDir": opts.ArtifactDir,
					"reason":      err.Error(),
				})
			}
			active = NewRuleStrategy()
			break
		}
		samples, accuracy := model.Metadata()
		log.Info("model artifact loaded", map[string]interface{}{
			"version":         model.Version(),
			"trainingSamples": samples,
			"testAccuracy":    accuracy,
		})
		active = model
	}

	return active
}

// Reset discards the active strategy so the next Get reloads. Intended
// for tests and process shutdown only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	active = nil
}

// SafePredict runs a strategy and converts any panic into the
// REJECT-biased zero-confidence default, so callers always receive a
// usable prediction.
func SafePredict(s Strategy, v features.Vector, sig *Signals) (pred Prediction) {
	defer func() {
		if r := recover(); r != nil {
			pred = rejectDefault(fmt.Sprintf("classifier error: %v", r))
		}
	}()

	pred = s.Predict(v, sig)
	metrics.AssessmentsTotal.WithLabelValues(string(pred.Label), s.Version()).Inc()
	return pred
}
