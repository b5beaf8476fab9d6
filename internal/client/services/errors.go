package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/authgate/internal/client/client"
)

// DefaultErrorMessage is used when the provider gave no message for a code
// without a fixed translation.
const DefaultErrorMessage = "an error occurred during authentication"

// OperationError is a normalized credential-operation failure.
type OperationError struct {
	Code    string
	Message string
}

func (e *OperationError) Error() string {
	return e.Message
}

var operationMessages = map[string]string{
	client.CodeEmailAlreadyInUse:    "email already in use",
	client.CodeInvalidEmail:         "invalid email address",
	client.CodeOperationNotAllowed:  "operation not permitted",
	client.CodeWeakPassword:         "password too weak",
	client.CodeUserDisabled:         "account disabled",
	client.CodeUserNotFound:         "no account found for this email",
	client.CodeWrongPassword:        "incorrect credentials",
	client.CodeInvalidCredential:    "incorrect credentials",
	client.CodeTooManyRequests:      "too many attempts, retry later",
	client.CodeNetworkRequestFailed: "network error",
}

// MapError converts any provider failure into an *OperationError. Known
// codes get a fixed message, unknown ones keep the provider's message.
// A nil error maps to nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}

	var code, message string
	var pe *client.ProviderError
	switch {
	case errors.As(err, &pe):
		code, message = pe.NormalizedCode(), pe.Message
	case errors.Is(err, client.ErrUnavailable):
		code = client.CodeNetworkRequestFailed
	default:
		message = err.Error()
	}

	if m, ok := operationMessages[code]; ok {
		return &OperationError{Code: code, Message: m}
	}
	if strings.TrimSpace(message) == "" {
		message = DefaultErrorMessage
	}
	return &OperationError{Code: code, Message: message}
}
