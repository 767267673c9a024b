// internal/engine/engine.go

// Package engine wires the extractors, the classifier, and the decision
// policy into one assessment pipeline. Both analysis callers — call
// recordings and demuxed interview audio — feed the same contract; the
// engine is blind to where the audio came from.
package engine

import (
	"context"
	"time"

	"intentrisk-workers/internal/audio"
	"intentrisk-workers/internal/classifier"
	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/common/metrics"
	"intentrisk-workers/internal/features"
	"intentrisk-workers/internal/text"
)

// Analysis is the persisted outcome of one assessment. It is embedded in
// call and interview records, never a standalone row.
type Analysis struct {
	Label        string             `json:"label"`
	Confidence   float64            `json:"confidence"`
	Scores       map[string]float64 `json:"scores"`
	Reasons      []string           `json:"reasons"`
	ModelVersion string             `json:"modelVersion"`
	AnalyzedAt   time.Time          `json:"analyzedAt"`
}

// AssessInput carries one recording into the pipeline. Audio is a WAV
// payload; Precomputed feature maps bypass extraction entirely. When
// ValidateUpload is set the audio is checked against the configured
// bounds first and a *audio.ValidationError is returned to the caller —
// the only error this engine ever surfaces.
type AssessInput struct {
	Audio          []byte
	SampleRate     int
	Transcript     string
	Precomputed    map[string]float64
	ValidateUpload bool
}

// Engine owns the assessment pipeline. Safe for concurrent use; the
// classifier singleton underneath is immutable after first load.
type Engine struct {
	opts   classifier.Options
	limits audio.Limits
	log    logger.Logger
}

// Config for New.
type Config struct {
	ArtifactDir     string
	Strategy        string
	MaxUploadBytes  int64
	MaxDurationSecs float64
}

func New(cfg Config, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{
		opts: classifier.Options{
			ArtifactDir: cfg.ArtifactDir,
			Strategy:    cfg.Strategy,
			Logger:      log,
		},
		limits: audio.Limits{
			MaxBytes:        cfg.MaxUploadBytes,
			MaxDurationSecs: cfg.MaxDurationSecs,
		},
		log: log,
	}
}

// Assess runs extraction, classification, and timestamping for one
// recording. Extraction failures degrade to zero-filled features and
// classifier failures to the REJECT-biased default; neither aborts the
// assessment. Missing audio and transcript together still produce a
// valid result on the all-zero vector path.
func (e *Engine) Assess(ctx context.Context, in AssessInput) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	strategy := classifier.Get(e.opts)

	if in.Precomputed != nil {
		vector := features.FromMap(in.Precomputed)
		sig := classifier.SignalsFromVector(vector)
		pred := classifier.SafePredict(strategy, vector, &sig)
		return e.toAnalysis(pred), nil
	}

	if in.ValidateUpload {
		if err := audio.Validate(in.Audio, e.limits); err != nil {
			return Analysis{}, err
		}
	}

	acoustic, acousticOK := e.extractAcoustic(in)
	lexical := text.Extract(in.Transcript)

	vector := assembleVector(acoustic, acousticOK, lexical)
	sig := buildSignals(acoustic, acousticOK, lexical, in.Transcript != "")

	pred := classifier.SafePredict(strategy, vector, &sig)
	return e.toAnalysis(pred), nil
}

// extractAcoustic decodes and measures the audio, absorbing every failure
// into the zero-features path.
func (e *Engine) extractAcoustic(in AssessInput) (audio.Features, bool) {
	if len(in.Audio) == 0 {
		return audio.Features{}, false
	}

	samples, rate, err := audio.DecodeWAV(in.Audio)
	if err != nil {
		metrics.FeatureExtractionFailures.WithLabelValues("decode").Inc()
		e.log.Warn("audio decode failed, degrading to zero acoustic features", map[string]interface{}{
			"error": err.Error(),
		})
		return audio.Features{}, false
	}
	if in.SampleRate > 0 {
		rate = in.SampleRate
	}

	feats, err := audio.Extract(samples, rate)
	if err != nil {
		metrics.FeatureExtractionFailures.WithLabelValues("extract").Inc()
		e.log.Warn("acoustic extraction failed, degrading to zero acoustic features", map[string]interface{}{
			"error": err.Error(),
		})
		return audio.Features{}, false
	}
	return feats, true
}

func assembleVector(ac audio.Features, acousticOK bool, lex text.Features) features.Vector {
	var acVals *features.AcousticValues
	if acousticOK {
		acVals = &features.AcousticValues{
			DurationSeconds:      ac.DurationSeconds,
			RMSMean:              ac.RMSMean,
			RMSStd:               ac.RMSStd,
			PitchMean:            ac.PitchMean,
			PitchStd:             ac.PitchStd,
			ZeroCrossingRateMean: ac.ZeroCrossingRateMean,
			SpectralCentroidMean: ac.SpectralCentroidMean,
			TempoProxy:           ac.TempoProxy,
		}
	}

	lexVals := &features.LexicalValues{
		CharLen:     float64(lex.CharLen),
		WordCount:   float64(lex.WordCount),
		Urgency:     float64(lex.UrgencyCount),
		Money:       float64(lex.MoneyCount),
		Secrecy:     float64(lex.SecrecyCount),
		Pressure:    float64(lex.PressureCount),
		IDAvoidance: float64(lex.IDAvoidanceCount),
		OTPPin:      float64(lex.OTPPinCount),
	}

	return features.Assemble(acVals, lexVals)
}

// buildSignals passes the extractors' direct measurements to the rule
// engine instead of forcing it to re-derive them from the vector.
func buildSignals(ac audio.Features, acousticOK bool, lex text.Features, hasTranscript bool) classifier.Signals {
	sig := classifier.Signals{
		HasProsody:  acousticOK,
		HasText:     hasTranscript,
		HasDialogue: hasTranscript,
	}

	if acousticOK {
		sig.PitchStd = ac.PitchStd
		sig.PauseRatio = ac.PauseRatio
	}
	if hasTranscript {
		sig.WordCount = float64(lex.WordCount)
		sig.PositiveCount = float64(lex.PositiveCount)
		sig.NegativeCount = float64(lex.NegativeCount)
		sig.HesitationCount = float64(lex.HesitationCount)
		sig.QuestionCount = float64(lex.QuestionCount)
	}
	if acousticOK && hasTranscript && ac.DurationSeconds > 0 {
		sig.HasRate = true
		sig.SpeechRate = float64(lex.WordCount) / ac.DurationSeconds
	}

	return sig
}

func (e *Engine) toAnalysis(pred classifier.Prediction) Analysis {
	return Analysis{
		Label:        string(pred.Label),
		Confidence:   pred.Confidence,
		Scores:       pred.Scores,
		Reasons:      pred.Reasons,
		ModelVersion: pred.ModelVersion,
		AnalyzedAt:   time.Now().UTC(),
	}
}
