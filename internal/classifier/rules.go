// internal/classifier/rules.go
package classifier

import (
	"math"

	"intentrisk-workers/internal/features"
)

// RuleVersion is reported as the model version on the rule path.
const RuleVersion = "rules-1.0.0"

// Base accumulator seeds. Verify carries the largest seed so that a
// signal-free input lands on VERIFY rather than a coin flip.
const (
	proceedBase = 0.10
	verifyBase  = 0.15
	rejectBase  = 0.10
)

// Signals are the prosodic and conversational measurements the rule table
// is written against. They overlap with, but are not identical to, the
// classifier vector: pause ratio, hesitations, questions, and sentiment
// counts come from the extractors directly when available. The Has* flags
// gate the rules — a rule whose source modality is absent does not fire,
// which is what keeps an all-zero vector on the seeded VERIFY outcome.
type Signals struct {
	PitchStd        float64
	PauseRatio      float64
	SpeechRate      float64
	PositiveCount   float64
	NegativeCount   float64
	HesitationCount float64
	QuestionCount   float64
	WordCount       float64

	HasProsody  bool
	HasRate     bool
	HasText     bool
	HasDialogue bool // hesitation/question markers measured, not inferred
}

// SignalsFromVector derives the best available signals when only the
// 16-field vector is known (precomputed feature dictionaries). Pause
// ratio falls back to an energy-variability proxy and sentiment to the
// red-flag totals; dialogue markers cannot be recovered, so their rules
// stay off.
func SignalsFromVector(v features.Vector) Signals {
	s := Signals{
		PitchStd:  v[features.PitchStd],
		WordCount: v[features.TranscriptWordCount],
	}

	if v.HasAcoustic() {
		s.HasProsody = true
		if v[features.RMSMean] > 0 {
			ratio := v[features.RMSStd] / (4 * v[features.RMSMean])
			s.PauseRatio = math.Min(ratio, 1)
		}
	}

	if v[features.DurationSeconds] > 0 && v[features.TranscriptWordCount] > 0 {
		s.HasRate = true
		s.SpeechRate = v[features.TranscriptWordCount] / v[features.DurationSeconds]
	}

	if v.HasLexical() {
		s.HasText = true
		s.NegativeCount = v[features.UrgencyCount] + v[features.MoneyCount] +
			v[features.SecrecyCount] + v[features.PressureCount] +
			v[features.IDAvoidanceCount] + v[features.OTPPinCount]
	}

	return s
}

// RuleStrategy is the deterministic fallback classifier. It is stateless
// and safe for concurrent use.
type RuleStrategy struct{}

func NewRuleStrategy() *RuleStrategy {
	return &RuleStrategy{}
}

func (r *RuleStrategy) Version() string {
	return RuleVersion
}

// Predict scores the vector, deriving signals from it when the caller has
// nothing richer to offer.
func (r *RuleStrategy) Predict(v features.Vector, sig *Signals) Prediction {
	var s Signals
	if sig != nil {
		s = *sig
	} else {
		s = SignalsFromVector(v)
	}
	return r.score(s)
}

// score applies the additive rule table and normalizes.
func (r *RuleStrategy) score(s Signals) Prediction {
	proceed, verify, reject := proceedBase, verifyBase, rejectBase

	if s.HasProsody {
		// Pitch variability.
		switch {
		case s.PitchStd < 22:
			proceed += 0.15
		case s.PitchStd > 35:
			reject += 0.15
		default:
			verify += 0.10
		}

		// Pause ratio.
		switch {
		case s.PauseRatio < 0.12:
			proceed += 0.15
		case s.PauseRatio > 0.22:
			reject += 0.15
		default:
			verify += 0.10
		}
	}

	if s.HasRate {
		switch {
		case s.SpeechRate > 3.2:
			proceed += 0.10
		case s.SpeechRate < 2.7:
			reject += 0.10
		default:
			verify += 0.05
		}
	}

	if s.HasText {
		// Sentiment balance.
		switch {
		case s.PositiveCount > 2*s.NegativeCount:
			proceed += 0.20
		case s.NegativeCount > 2*s.PositiveCount:
			reject += 0.20
		default:
			verify += 0.15
		}

		// Transcript length.
		switch {
		case s.WordCount >= 150:
			proceed += 0.10
		case s.WordCount < 70:
			reject += 0.10
		}
	}

	if s.HasDialogue {
		// Hesitation markers.
		switch {
		case s.HesitationCount <= 1:
			proceed += 0.10
		case s.HesitationCount >= 5:
			reject += 0.15
		default:
			verify += 0.10
		}

		// Questions.
		switch {
		case s.QuestionCount <= 2:
			proceed += 0.10
		case s.QuestionCount >= 6:
			reject += 0.10
			verify += 0.05
		default:
			verify += 0.10
		}
	}

	total := proceed + verify + reject
	scores := map[string]float64{
		string(LabelProceed): proceed / total,
		string(LabelVerify):  verify / total,
		string(LabelReject):  reject / total,
	}

	label := LabelProceed
	best := scores[string(LabelProceed)]
	for _, l := range []Label{LabelVerify, LabelReject} {
		if scores[string(l)] > best {
			best = scores[string(l)]
			label = l
		}
	}

	return Prediction{
		Label:        label,
		Confidence:   best,
		Scores:       scores,
		Reasons:      ReasonsFor(label),
		ModelVersion: RuleVersion,
	}
}
