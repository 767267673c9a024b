// internal/workers/interview/analyze-interview/validation.go
package analyzeinterview

import "intentrisk-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"interviewId", "videoBase64"},
		Properties: map[string]validation.Property{
			"interviewId": {
				Type:        "string",
				Description: "Interview identifier",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"videoBase64": {
				Type:        "string",
				Description: "Base64-encoded interview video",
				MinLength:   intPtr(1),
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
