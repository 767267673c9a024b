// internal/text/features_test.go
package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Extraction Tests
// ==========================

func TestExtract_EmptyTranscript(t *testing.T) {
	f := Extract("")

	assert.Equal(t, Features{}, f)
	assert.Equal(t, 0, f.RedFlagTotal())
}

func TestExtract_CleanTranscript(t *testing.T) {
	f := Extract("Hello, I would like to discuss the plumbing job we posted last week.")

	assert.Equal(t, 13, f.WordCount)
	assert.Equal(t, 0, f.UrgencyCount)
	assert.Equal(t, 0, f.MoneyCount)
	assert.Equal(t, 0, f.SecrecyCount)
	assert.Equal(t, 0, f.PressureCount)
	assert.Equal(t, 0, f.OTPPinCount)
	assert.Equal(t, 0, f.RedFlagTotal())
}

func TestExtract_CountsKeywordCategories(t *testing.T) {
	transcript := "This is urgent, you must act immediately. Send money as a deposit fee and share the OTP code."
	f := Extract(transcript)

	// urgent + immediately
	assert.Equal(t, 2, f.UrgencyCount)
	// send money + deposit + fee
	assert.Equal(t, 3, f.MoneyCount)
	// you must
	assert.Equal(t, 1, f.PressureCount)
	// this is
	assert.Equal(t, 1, f.IDAvoidanceCount)
	// otp + code
	assert.Equal(t, 2, f.OTPPinCount)
	assert.Equal(t, 0, f.SecrecyCount)
	assert.Equal(t, 9, f.RedFlagTotal())
}

func TestExtract_SubstringContainment(t *testing.T) {
	// "urgent" matches inside "urgently", and "won" matches inside
	// "wonderful". The thresholds downstream assume this containment
	// behavior, so it is pinned here.
	f := Extract("he urgently promised a wonderful prize")

	assert.Equal(t, 1, f.UrgencyCount)
	assert.Equal(t, 2, f.MoneyCount) // won (in wonderful) + prize
}

func TestExtract_CaseInsensitive(t *testing.T) {
	f := Extract("URGENT: Transfer the PAYMENT")

	assert.Equal(t, 1, f.UrgencyCount)
	assert.Equal(t, 2, f.MoneyCount)
}

func TestExtract_RepeatedKeywordCountsEachOccurrence(t *testing.T) {
	f := Extract("urgent urgent urgent")

	assert.Equal(t, 3, f.UrgencyCount)
}

// ==========================
// Hesitation and Question Tests
// ==========================

func TestExtract_HesitationsAreTokenMatches(t *testing.T) {
	// "er" inside "transfer" and "um" inside "number" must not count.
	f := Extract("Um, the transfer number is, uh, hmm, unknown")

	assert.Equal(t, 3, f.HesitationCount)
}

func TestExtract_HesitationStripsPunctuation(t *testing.T) {
	f := Extract(`"um!" he said. uh? ah...`)

	assert.Equal(t, 3, f.HesitationCount)
}

func TestExtract_QuestionCount(t *testing.T) {
	f := Extract("Can you start Monday? What is your rate? Great.")

	assert.Equal(t, 2, f.QuestionCount)
}

// ==========================
// Sentiment Tests
// ==========================

func TestExtract_SentimentTokens(t *testing.T) {
	f := Extract("Great, that sounds good. No, never, that is a scam.")

	assert.Equal(t, 2, f.PositiveCount)
	assert.Equal(t, 3, f.NegativeCount)
}

func TestExtract_ThankYouPhrase(t *testing.T) {
	// "thank" alone is not a token match ("thanks" is), but the two-word
	// phrase is counted separately.
	f := Extract("thank you, thanks again")

	assert.Equal(t, 2, f.PositiveCount)
}

func TestExtract_LengthFeatures(t *testing.T) {
	transcript := "one two three"
	f := Extract(transcript)

	assert.Equal(t, len(transcript), f.CharLen)
	assert.Equal(t, 3, f.WordCount)
}
