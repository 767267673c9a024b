// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Audio validation errors surface to workflow callers unchanged.
	ErrCodeEmptyAudio        ErrorCode = "EMPTY_AUDIO"
	ErrCodeInvalidBase64     ErrorCode = "INVALID_BASE64"
	ErrCodeUnknownFormat     ErrorCode = "UNKNOWN_FORMAT"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	ErrCodeAudioTooLong      ErrorCode = "AUDIO_TOO_LONG"

	ErrCodeFeatureExtractionFailed ErrorCode = "FEATURE_EXTRACTION_FAILED"
	ErrCodeModelArtifactInvalid    ErrorCode = "MODEL_ARTIFACT_INVALID"
	ErrCodeClassifierUnavailable   ErrorCode = "CLASSIFIER_UNAVAILABLE"

	ErrCodeCallNotFound          ErrorCode = "CALL_NOT_FOUND"
	ErrCodeCallStateInvalid      ErrorCode = "CALL_STATE_INVALID"
	ErrCodeInterviewNotFound     ErrorCode = "INTERVIEW_NOT_FOUND"
	ErrCodeInterviewStateInvalid ErrorCode = "INTERVIEW_STATE_INVALID"
	ErrCodeRecordingUnavailable  ErrorCode = "RECORDING_UNAVAILABLE"

	ErrCodeTranscriptionFailed  ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeTranscriptionTimeout ErrorCode = "TRANSCRIPTION_TIMEOUT"
	ErrCodeMediaDecodeFailed    ErrorCode = "MEDIA_DECODE_FAILED"
	ErrCodeRoomTokenFailed      ErrorCode = "ROOM_TOKEN_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeCacheUnavailable  ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewAudioValidationError wraps a rejected upload. These are never retried:
// the same payload will fail validation the same way every time.
func NewAudioValidationError(code ErrorCode, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   "Audio validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCallNotFoundError creates a non-retryable lookup error.
func NewCallNotFoundError(callID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCallNotFound,
		Message:   "Call not found",
		Details:   fmt.Sprintf("callId: %s", callID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCallStateInvalidError signals an illegal lifecycle transition.
func NewCallStateInvalidError(callID, from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCallStateInvalid,
		Message:   "Illegal call state transition",
		Details:   fmt.Sprintf("callId: %s, %s -> %s", callID, from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInterviewNotFoundError creates a non-retryable lookup error.
func NewInterviewNotFoundError(interviewID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInterviewNotFound,
		Message:   "Interview not found",
		Details:   fmt.Sprintf("interviewId: %s", interviewID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInterviewStateInvalidError signals an illegal lifecycle transition.
func NewInterviewStateInvalidError(interviewID, from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInterviewStateInvalid,
		Message:   "Illegal interview state transition",
		Details:   fmt.Sprintf("interviewId: %s, %s -> %s", interviewID, from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordingUnavailableError creates a retryable fetch error. Recordings are
// uploaded asynchronously by the media server, so a miss may resolve itself.
func NewRecordingUnavailableError(callID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordingUnavailable,
		Message:   "Recording not yet available",
		Details:   fmt.Sprintf("callId: %s: %v", callID, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTranscriptionFailedError creates a retryable transcription service error.
func NewTranscriptionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptionFailed,
		Message:   "Transcription service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTranscriptionTimeoutError creates a retryable timeout error.
func NewTranscriptionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptionTimeout,
		Message:   "Transcription service timeout",
		Details:   "transcription call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMediaDecodeFailedError creates a non-retryable decode error. A recording
// that ffmpeg cannot demux will not decode better on retry.
func NewMediaDecodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMediaDecodeFailed,
		Message:   "Media decode error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRoomTokenFailedError creates a non-retryable token minting error.
func NewRoomTokenFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRoomTokenFailed,
		Message:   "Conference room token generation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelArtifactInvalidError creates a non-retryable artifact error.
func NewModelArtifactInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelArtifactInvalid,
		Message:   "Classifier artifact rejected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable Elasticsearch indexing error.
func NewSearchIndexFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Search index operation failed",
		Details:   fmt.Sprintf("index: %s: %v", index, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable Redis error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Notification send failed on channel '%s'", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// IsAudioValidationCode reports whether a code belongs to the upload
// validation family. Only these codes surface to API callers verbatim;
// everything else is collapsed into generic processing failures.
func IsAudioValidationCode(code ErrorCode) bool {
	switch code {
	case ErrCodeEmptyAudio, ErrCodeInvalidBase64, ErrCodeUnknownFormat,
		ErrCodeUnsupportedFormat, ErrCodeFileTooLarge, ErrCodeAudioTooLong:
		return true
	}
	return false
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeCacheUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeTranscriptionFailed,
		ErrCodeRecordingUnavailable:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeTranscriptionTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Validation and business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case IsAudioValidationCode(ErrorCode(codeStr)):
		return "AUDIO_VALIDATION"
	case strings.Contains(codeStr, "CALL") || strings.Contains(codeStr, "INTERVIEW"):
		return "LIFECYCLE"
	case strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "CLASSIFIER") || strings.Contains(codeStr, "FEATURE"):
		return "CLASSIFIER"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "TRANSCRIPTION") || strings.Contains(codeStr, "MEDIA") || strings.Contains(codeStr, "ROOM"):
		return "MEDIA"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
