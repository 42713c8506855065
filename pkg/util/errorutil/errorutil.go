package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Business error codes. Message carries the exact wire token.
const (
	CodeMissingRequiredFields = "MISSING_REQUIRED_FIELDS"
	CodeMissingID             = "MISSING_ID"
	CodeNoUpdateFields        = "NO_UPDATE_FIELDS"
	CodeUpdateFailed          = "UPDATE_FAILED"
	CodeDeleteFailed          = "DELETE_FAILED"
	CodeInternal              = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	// ID echoes the addressed issue id back to the caller when the error carries one.
	ID  string
	Err error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the sentinel values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsBusiness reports whether the error belongs to the documented contract and is
// therefore answered with HTTP 200.
func (e *DomainError) IsBusiness() bool {
	return e.HTTPStatus == http.StatusOK
}

// Sentinels for errors.Is comparisons.
var (
	ErrMissingRequiredFields = &DomainError{Code: CodeMissingRequiredFields}
	ErrMissingID             = &DomainError{Code: CodeMissingID}
	ErrNoUpdateFields        = &DomainError{Code: CodeNoUpdateFields}
	ErrUpdateFailed          = &DomainError{Code: CodeUpdateFailed}
	ErrDeleteFailed          = &DomainError{Code: CodeDeleteFailed}
	ErrInternal              = &DomainError{Code: CodeInternal}
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, id string) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, ID: id}
}

func NewMissingRequiredFields() error {
	return NewDomainError(CodeMissingRequiredFields, "required field(s) missing", http.StatusOK, "")
}

func NewMissingID() error {
	return NewDomainError(CodeMissingID, "missing _id", http.StatusOK, "")
}

func NewNoUpdateFields(id string) error {
	return NewDomainError(CodeNoUpdateFields, "no update field(s) sent", http.StatusOK, id)
}

func NewUpdateFailed(id string, err error) error {
	de := NewDomainError(CodeUpdateFailed, "could not update", http.StatusOK, id)
	de.Err = err
	return de
}

func NewDeleteFailed(id string, err error) error {
	de := NewDomainError(CodeDeleteFailed, "could not delete", http.StatusOK, id)
	de.Err = err
	return de
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}
