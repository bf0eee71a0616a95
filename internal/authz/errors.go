package authz

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an authorization failure in machine-readable form. Codes
// are part of the API contract and map one-to-one onto HTTP statuses.
type Code string

const (
	CodeAuthFailed            Code = "AUTH_FAILED"
	CodeNotAMember            Code = "NOT_A_MEMBER"
	CodeOrgMismatch           Code = "ORG_MISMATCH"
	CodeOrgInactive           Code = "ORG_INACTIVE"
	CodeSubscriptionSuspended Code = "SUBSCRIPTION_SUSPENDED"
	CodeSubscriptionCancelled Code = "SUBSCRIPTION_CANCELLED"
	CodeRoleInsufficient      Code = "ROLE_INSUFFICIENT"
	CodePermissionDenied      Code = "PERMISSION_DENIED"
	CodeRateLimitExceeded     Code = "RATE_LIMIT_EXCEEDED"
	CodeStoreError            Code = "STORE_ERROR"
)

// ErrNotFound is returned by stores when a row does not exist. The resolver
// and gate translate it into the appropriate taxonomy error; it never reaches
// a client directly.
var ErrNotFound = errors.New("authz: not found")

// Error is a typed authorization failure carrying the HTTP status and reason
// code callers map straight onto a response.
type Error struct {
	Code    Code
	Status  int
	Message string

	// RetryAfter is set only for RATE_LIMIT_EXCEEDED.
	RetryAfter int

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// ErrAuthFailed covers missing or invalid credentials.
func ErrAuthFailed(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Code: CodeAuthFailed, Status: http.StatusUnauthorized, Message: msg}
}

func forbidden(code Code, msg string) *Error {
	return &Error{Code: code, Status: http.StatusForbidden, Message: msg}
}

func ErrNotAMember() *Error {
	return forbidden(CodeNotAMember, "not a member of any organization")
}

func ErrOrgMismatch() *Error {
	return forbidden(CodeOrgMismatch, "no access to this organization")
}

func ErrOrgInactive() *Error {
	return forbidden(CodeOrgInactive, "organization inactive")
}

func ErrSubscriptionSuspended() *Error {
	return forbidden(CodeSubscriptionSuspended, "subscription suspended")
}

func ErrSubscriptionCancelled() *Error {
	return forbidden(CodeSubscriptionCancelled, "subscription cancelled")
}

func ErrRoleInsufficient(required Role) *Error {
	return forbidden(CodeRoleInsufficient, fmt.Sprintf("requires role %s or above", required))
}

func ErrPermissionDenied(perm Permission) *Error {
	return forbidden(CodePermissionDenied, fmt.Sprintf("permission %s not granted", perm))
}

// ErrRateLimited carries the retry hint in seconds.
func ErrRateLimited(retryAfter int) *Error {
	return &Error{
		Code:       CodeRateLimitExceeded,
		Status:     http.StatusTooManyRequests,
		Message:    "rate limit exceeded",
		RetryAfter: retryAfter,
	}
}

// ErrStore wraps a transient backend failure. The cause stays internal; the
// client-facing message is always generic.
func ErrStore(cause error) *Error {
	return &Error{
		Code:    CodeStoreError,
		Status:  http.StatusInternalServerError,
		Message: "internal error",
		cause:   cause,
	}
}

// AsError extracts a typed *Error from err, converting unknown errors into a
// store error so handlers always have a status and code to respond with.
func AsError(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return ErrStore(err)
}
