package client

import (
	"errors"
	"strings"
)

var (
	ErrUnavailable  = errors.New("provider unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrClosed       = errors.New("provider closed")
	ErrInvalidToken = errors.New("invalid id token")
)

// Provider error codes.
const (
	CodeEmailAlreadyInUse    = "email-already-in-use"
	CodeInvalidEmail         = "invalid-email"
	CodeOperationNotAllowed  = "operation-not-allowed"
	CodeWeakPassword         = "weak-password"
	CodeUserDisabled         = "user-disabled"
	CodeUserNotFound         = "user-not-found"
	CodeWrongPassword        = "wrong-password"
	CodeInvalidCredential    = "invalid-credential"
	CodeTooManyRequests      = "too-many-requests"
	CodeNetworkRequestFailed = "network-request-failed"
)

// ProviderError is a rejection reported by the identity provider.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// NormalizedCode returns Code without the optional "auth/" namespace.
func (e *ProviderError) NormalizedCode() string {
	return strings.TrimPrefix(e.Code, "auth/")
}

func newProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}
