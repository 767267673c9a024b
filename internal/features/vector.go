// internal/features/vector.go

// Package features assembles acoustic and lexical measurements into the
// fixed 16-field vector consumed by the classifier strategies.
package features

// Size is the number of fields in a Vector. Field order never changes:
// trained model artifacts record it in their metadata and are rejected
// when it differs.
const Size = 16

// Field indices into a Vector.
const (
	DurationSeconds = iota
	RMSMean
	RMSStd
	PitchMean
	PitchStd
	ZeroCrossingRateMean
	SpectralCentroidMean
	TempoProxy
	TranscriptCharLen
	TranscriptWordCount
	UrgencyCount
	MoneyCount
	SecrecyCount
	PressureCount
	IDAvoidanceCount
	OTPPinCount
)

// Names lists the canonical field names in vector order.
var Names = []string{
	"duration_seconds",
	"rms_mean",
	"rms_std",
	"pitch_mean",
	"pitch_std",
	"zero_crossing_rate_mean",
	"spectral_centroid_mean",
	"tempo_proxy",
	"transcript_char_len",
	"transcript_word_count",
	"urgency_count",
	"money_count",
	"secrecy_count",
	"pressure_count",
	"id_avoidance_count",
	"otp_pin_count",
}

// Vector is an ordered, fixed-length feature tuple. A modality that could
// not be extracted contributes zeros, never a shorter vector.
type Vector [Size]float64

// AcousticValues is the acoustic half of the vector in field order.
type AcousticValues struct {
	DurationSeconds      float64
	RMSMean              float64
	RMSStd               float64
	PitchMean            float64
	PitchStd             float64
	ZeroCrossingRateMean float64
	SpectralCentroidMean float64
	TempoProxy           float64
}

// LexicalValues is the lexical half of the vector in field order.
type LexicalValues struct {
	CharLen     float64
	WordCount   float64
	Urgency     float64
	Money       float64
	Secrecy     float64
	Pressure    float64
	IDAvoidance float64
	OTPPin      float64
}

// Assemble merges the two modality halves into one vector. Nil halves are
// zero-filled.
func Assemble(ac *AcousticValues, lex *LexicalValues) Vector {
	var v Vector
	if ac != nil {
		v[DurationSeconds] = ac.DurationSeconds
		v[RMSMean] = ac.RMSMean
		v[RMSStd] = ac.RMSStd
		v[PitchMean] = ac.PitchMean
		v[PitchStd] = ac.PitchStd
		v[ZeroCrossingRateMean] = ac.ZeroCrossingRateMean
		v[SpectralCentroidMean] = ac.SpectralCentroidMean
		v[TempoProxy] = ac.TempoProxy
	}
	if lex != nil {
		v[TranscriptCharLen] = lex.CharLen
		v[TranscriptWordCount] = lex.WordCount
		v[UrgencyCount] = lex.Urgency
		v[MoneyCount] = lex.Money
		v[SecrecyCount] = lex.Secrecy
		v[PressureCount] = lex.Pressure
		v[IDAvoidanceCount] = lex.IDAvoidance
		v[OTPPinCount] = lex.OTPPin
	}
	return v
}

// FromMap builds a vector from a name→value map, e.g. precomputed feature
// dictionaries supplied by a caller that bypasses extraction. Unknown keys
// are ignored; absent fields stay zero.
func FromMap(m map[string]float64) Vector {
	var v Vector
	for i, name := range Names {
		if val, ok := m[name]; ok {
			v[i] = val
		}
	}
	return v
}

// ToMap returns the vector keyed by canonical field names.
func (v Vector) ToMap() map[string]float64 {
	m := make(map[string]float64, Size)
	for i, name := range Names {
		m[name] = v[i]
	}
	return m
}

// IsZero reports whether every field is exactly zero.
func (v Vector) IsZero() bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// HasAcoustic reports whether any acoustic field is non-zero.
func (v Vector) HasAcoustic() bool {
	for i := DurationSeconds; i <= TempoProxy; i++ {
		if v[i] != 0 {
			return true
		}
	}
	return false
}

// HasLexical reports whether any lexical field is non-zero.
func (v Vector) HasLexical() bool {
	for i := TranscriptCharLen; i <= OTPPinCount; i++ {
		if v[i] != 0 {
			return true
		}
	}
	return false
}
