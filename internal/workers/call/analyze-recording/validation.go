// internal/workers/call/analyze-recording/validation.go
package analyzerecording

import "intentrisk-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"callId", "userId", "audioBase64"},
		Properties: map[string]validation.Property{
			"callId": {
				Type:        "string",
				Description: "Call identifier",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"userId": {
				Type:        "string",
				Description: "Submitting user, must be the call client",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"audioBase64": {
				Type:        "string",
				Description: "Base64-encoded call recording",
				MinLength:   intPtr(1),
			},
			"recordingPath": {
				Type:        "string",
				Description: "Storage path recorded alongside the analysis (optional)",
				MaxLength:   intPtr(500),
			},
			"transcript": {
				Type:        "string",
				Description: "Pre-computed transcript, skips the transcription service (optional)",
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
