package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Code          string            `json:"code,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeToppingNotFound    = "TOPPING_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is the error type returned by services for expected failures.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string]string
}

func (e *DomainError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d field errors)", e.Message, len(e.Fields))
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError returns a validation error carrying per-field messages.
func NewValidationError(message string, fields map[string]string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewNotFoundError returns a not-found error for the named resource.
func NewNotFoundError(code, resource string) *DomainError {
	return NewDomainError(KindNotFound, code, resource+" not found")
}

// AsDomainError unwraps err into a DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}

// Common domain errors
var (
	ErrInvalidID          = NewDomainError(KindValidation, ErrCodeInvalidID, "Identifier must be a 24-character hexadecimal string")
	ErrInvalidCredentials = NewDomainError(KindAuthentication, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrUnauthenticated    = NewDomainError(KindAuthentication, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(KindAuthorization, ErrCodeForbidden, "Insufficient role for this operation")
	ErrEmailTaken         = NewDomainError(KindConflict, ErrCodeEmailTaken, "Email is already registered")
	ErrProductNotFound    = NewNotFoundError(ErrCodeProductNotFound, "product")
	ErrToppingNotFound    = NewNotFoundError(ErrCodeToppingNotFound, "topping")
	ErrOrderNotFound      = NewNotFoundError(ErrCodeOrderNotFound, "order")
	ErrUserNotFound       = NewNotFoundError(ErrCodeUserNotFound, "user")
	ErrCartItemNotFound   = NewNotFoundError(ErrCodeCartItemNotFound, "cart item")
)
