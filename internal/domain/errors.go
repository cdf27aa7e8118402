package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeEmbedding        = "EMBEDDING_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidSourceType    = NewDomainError(ErrCodeValidation, "invalid source type")
	ErrMissingOrgID         = NewDomainError(ErrCodeValidation, "organization id is required")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query cannot be empty")
)

// Embedding provider errors
var (
	ErrEmptyEmbeddingText  = NewDomainError(ErrCodeEmbedding, "cannot embed empty text")
	ErrEmbeddingDimensions = NewDomainError(ErrCodeEmbedding, "embedding has unexpected dimensions")
	ErrNoEmbeddingData     = NewDomainError(ErrCodeEmbedding, "provider returned no embedding data")
)

// Not found errors
var (
	ErrOrganizationNotFound = NewDomainError(ErrCodeNotFound, "organization not found")
	ErrProjectNotFound      = NewDomainError(ErrCodeNotFound, "project not found")
	ErrChunkNotFound        = NewDomainError(ErrCodeNotFound, "knowledge chunk not found")
)

// Authorization errors
var (
	ErrInvalidServiceKey = NewDomainError(ErrCodeUnauthorized, "invalid service key")
)
