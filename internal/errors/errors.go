package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInvalidQuality   = "INVALID_QUALITY"
	ErrCodePersistenceParse = "PERSISTENCE_PARSE_ERROR"
	ErrCodeQuotaExceeded    = "STORAGE_QUOTA_EXCEEDED"
	ErrCodeGeneration       = "GENERATION_FAILURE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "GENERATION_FAILURE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewInvalidQualityError reports a quality score outside [0,5]. This is a
// contract violation by the caller, so it fails loudly instead of clamping.
func NewInvalidQualityError(quality int) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidQuality,
		Message: fmt.Sprintf("quality must be between 0 and 5, got %d", quality),
		Status:  400,
	}
}

// NewPersistenceParseError wraps a failure to decode the persisted state.
// Callers recover by falling back to the default state.
func NewPersistenceParseError(err error) *AppError {
	return &AppError{
		Code:    ErrCodePersistenceParse,
		Message: "persisted state could not be parsed",
		Status:  500,
		Err:     err,
	}
}

// NewQuotaExceededError reports that a write would exceed the local store's
// size limit even after pruning.
func NewQuotaExceededError(size, limit int) *AppError {
	return &AppError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("state of %d bytes exceeds storage limit of %d bytes", size, limit),
		Status:  507,
	}
}

// NewGenerationError wraps a failure from the AI collaborator. Always
// recoverable: callers fall back to static content or offer a retry.
func NewGenerationError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeGeneration,
		Message: "content generation failed",
		Status:  502,
		Err:     err,
	}
}
