// internal/text/features.go

// Package text extracts lexical risk signals from a call or interview
// transcript. Extraction never fails: an empty transcript yields all-zero
// features.
package text

import "strings"

// Red-flag keyword categories. Matching is substring containment on the
// lower-cased transcript, so "today" matches inside "todays" — that is the
// established behavior and downstream thresholds assume it.
var (
	urgencyKeywords  = []string{"urgent", "immediately", "hurry", "right now", "today only", "limited time"}
	moneyKeywords    = []string{"send money", "transfer", "payment", "fee", "deposit", "prize", "won", "lottery"}
	secrecyKeywords  = []string{"don't tell", "secret", "keep this between", "confidential"}
	pressureKeywords = []string{"you must", "have to", "no choice", "final warning", "legal action"}
	idAvoidKeywords  = []string{"i am", "this is", "calling from", "representative"}
	otpPinKeywords   = []string{"otp", "pin", "password", "code", "verification"}

	hesitationMarkers = []string{"um", "uh", "hmm", "er", "ah"}

	positiveWords = []string{"great", "good", "excellent", "perfect", "thanks", "thank you", "wonderful", "sure", "happy", "yes"}
	negativeWords = []string{"problem", "issue", "wrong", "bad", "no", "never", "cannot", "won't", "refuse", "scam"}
)

// Features holds the lexical measurements for one transcript. CharLen
// through OTPPinCount feed the classifier vector; the remaining counters
// are prosodic-adjacent signals consumed by the rule engine only.
type Features struct {
	CharLen          int
	WordCount        int
	UrgencyCount     int
	MoneyCount       int
	SecrecyCount     int
	PressureCount    int
	IDAvoidanceCount int
	OTPPinCount      int

	HesitationCount int
	QuestionCount   int
	PositiveCount   int
	NegativeCount   int
}

// Extract computes lexical features. Safe on empty input.
func Extract(transcript string) Features {
	if transcript == "" {
		return Features{}
	}

	lower := strings.ToLower(transcript)

	f := Features{
		CharLen:          len(transcript),
		WordCount:        len(strings.Fields(transcript)),
		UrgencyCount:     countOccurrences(lower, urgencyKeywords),
		MoneyCount:       countOccurrences(lower, moneyKeywords),
		SecrecyCount:     countOccurrences(lower, secrecyKeywords),
		PressureCount:    countOccurrences(lower, pressureKeywords),
		IDAvoidanceCount: countOccurrences(lower, idAvoidKeywords),
		OTPPinCount:      countOccurrences(lower, otpPinKeywords),
		QuestionCount:    strings.Count(transcript, "?"),
	}

	// Hesitations and sentiment words are token matches, not substrings:
	// counting "er" inside every word would swamp the signal.
	for _, tok := range strings.Fields(lower) {
		tok = strings.Trim(tok, ".,!?;:\"'")
		for _, m := range hesitationMarkers {
			if tok == m {
				f.HesitationCount++
			}
		}
		for _, w := range positiveWords {
			if tok == w {
				f.PositiveCount++
			}
		}
		for _, w := range negativeWords {
			if tok == w {
				f.NegativeCount++
			}
		}
	}
	// Multi-word sentiment phrases.
	f.PositiveCount += strings.Count(lower, "thank you")

	return f
}

// RedFlagTotal sums the six category counters.
func (f Features) RedFlagTotal() int {
	return f.UrgencyCount + f.MoneyCount + f.SecrecyCount +
		f.PressureCount + f.IDAvoidanceCount + f.OTPPinCount
}

func countOccurrences(lower string, keywords []string) int {
	var n int
	for _, kw := range keywords {
		n += strings.Count(lower, kw)
	}
	return n
}
