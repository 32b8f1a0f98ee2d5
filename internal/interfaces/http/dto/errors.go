package dto

import (
	"net/http"
	"strings"
)

// Codes the HTTP layer emits itself. Domain errors keep their own codes.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// envelopeCodes renames the generic shared errors so clients see one code
// per condition whichever layer raised it
var envelopeCodes = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"FORBIDDEN":        ErrCodeForbidden,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// EnvelopeCode returns the code written to the response for code
func EnvelopeCode(code string) string {
	if c, ok := envelopeCodes[code]; ok {
		return c
	}
	return code
}

// domainStatus pins the status of domain codes whose shape alone is ambiguous
var domainStatus = map[string]int{
	"NOT_FOUND":               http.StatusNotFound,
	"ALREADY_EXISTS":          http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"UNAUTHORIZED":            http.StatusUnauthorized,
	"INVALID_CREDENTIALS":     http.StatusUnauthorized,
	"WRONG_CREDENTIALS":       http.StatusUnauthorized,
	"CUSTOMER_NOT_ACTIVE":     http.StatusUnauthorized,
	"CUSTOMER_DELETED":        http.StatusUnauthorized,
	"CUSTOMER_NOT_REGISTERED": http.StatusUnauthorized,
	"FORBIDDEN":               http.StatusForbidden,
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"VALIDATION_ERROR":        http.StatusBadRequest,
	"BAD_REQUEST":             http.StatusBadRequest,
	"INTERNAL_ERROR":          http.StatusInternalServerError,

	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
}

// StatusForDomainCode picks the HTTP status for a domain error code. Codes
// outside the table are classified by their shape: INVALID_* is a bad
// request, *_NOT_FOUND is 404, *_EXISTS is 409 and anything else breaks a
// business rule (422).
func StatusForDomainCode(code string) int {
	if status, ok := domainStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"), strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
