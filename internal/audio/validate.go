// internal/audio/validate.go
package audio

import (
	"bytes"
	"fmt"
)

// ValidationError is the only error kind from this package that workflow
// callers see verbatim. Everything else is absorbed into degraded feature
// extraction upstream.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validation error codes.
const (
	CodeEmptyAudio        = "EMPTY_AUDIO"
	CodeInvalidBase64     = "INVALID_BASE64"
	CodeUnknownFormat     = "UNKNOWN_FORMAT"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeAudioTooLong      = "AUDIO_TOO_LONG"
)

// Limits bounds accepted uploads.
type Limits struct {
	MaxBytes        int64
	MaxDurationSecs float64
}

// Formats accepted for direct decode. Anything else must arrive already
// demuxed to WAV by the media collaborator.
var supportedFormats = map[string]bool{
	"wav": true,
}

var knownFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"ogg":  true,
	"webm": true,
	"flac": true,
	"m4a":  true,
}

// SniffFormat identifies the container by magic bytes. Returns "" when the
// payload matches nothing we know.
func SniffFormat(raw []byte) string {
	switch {
	case len(raw) >= 12 && bytes.Equal(raw[:4], []byte("RIFF")) && bytes.Equal(raw[8:12], []byte("WAVE")):
		return "wav"
	case len(raw) >= 3 && bytes.Equal(raw[:3], []byte("ID3")):
		return "mp3"
	case len(raw) >= 2 && raw[0] == 0xFF && (raw[1]&0xE0) == 0xE0:
		return "mp3"
	case len(raw) >= 4 && bytes.Equal(raw[:4], []byte("OggS")):
		return "ogg"
	case len(raw) >= 4 && bytes.Equal(raw[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "webm"
	case len(raw) >= 4 && bytes.Equal(raw[:4], []byte("fLaC")):
		return "flac"
	case len(raw) >= 12 && bytes.Equal(raw[4:8], []byte("ftyp")):
		return "m4a"
	}
	return ""
}

// Validate checks an uploaded payload against format and size bounds and,
// for WAV, the duration bound. The returned error is always a
// *ValidationError.
func Validate(raw []byte, limits Limits) error {
	if len(raw) == 0 {
		return &ValidationError{Code: CodeEmptyAudio, Message: "audio payload is empty"}
	}

	if limits.MaxBytes > 0 && int64(len(raw)) > limits.MaxBytes {
		return &ValidationError{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("payload is %d bytes, limit is %d", len(raw), limits.MaxBytes),
		}
	}

	format := SniffFormat(raw)
	if format == "" {
		return &ValidationError{Code: CodeUnknownFormat, Message: "could not identify audio container"}
	}
	if !knownFormats[format] || !supportedFormats[format] {
		return &ValidationError{
			Code:    CodeUnsupportedFormat,
			Message: fmt.Sprintf("format %q is not accepted for analysis", format),
		}
	}

	if limits.MaxDurationSecs > 0 {
		samples, rate, err := DecodeWAV(raw)
		if err != nil {
			return &ValidationError{Code: CodeUnknownFormat, Message: err.Error()}
		}
		duration := float64(len(samples)) / float64(rate)
		if duration > limits.MaxDurationSecs {
			return &ValidationError{
				Code:    CodeAudioTooLong,
				Message: fmt.Sprintf("duration %.1fs exceeds limit %.1fs", duration, limits.MaxDurationSecs),
			}
		}
	}

	return nil
}
