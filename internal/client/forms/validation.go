package forms

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation error keys.
const (
	KeyEmailRequired     = "auth.emailRequired"
	KeyEmailInvalid      = "auth.emailInvalid"
	KeyPasswordRequired  = "auth.passwordRequired"
	KeyPasswordMinLength = "auth.passwordMinLength"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

const maxEmailLocalPart = 64

var (
	validate = validator.New()

	emailRules    = "required,max=254,email"
	passwordRules = "required,min=" + strconv.Itoa(MinPasswordLength)

	emailKeys = map[string]string{
		"required": KeyEmailRequired,
		"max":      KeyEmailInvalid,
		"email":    KeyEmailInvalid,
	}
	passwordKeys = map[string]string{
		"required": KeyPasswordRequired,
		"min":      KeyPasswordMinLength,
	}
)

// errorKey maps the first failed rule of err to its message key.
func errorKey(err error, keys map[string]string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	return keys[verrs[0].Tag()]
}

// ValidEmailSyntax reports whether s is a syntactically valid address.
func ValidEmailSyntax(s string) bool {
	return ValidateEmail(s) == ""
}

// ValidateEmail returns the error key for an email value, or "".
func ValidateEmail(v string) string {
	if key := errorKey(validate.Var(v, emailRules), emailKeys); key != "" {
		return key
	}
	if at := strings.IndexByte(v, '@'); at > maxEmailLocalPart {
		return KeyEmailInvalid
	}
	return ""
}

// ValidatePassword returns the error key for a password value, or "".
func ValidatePassword(v string) string {
	return errorKey(validate.Var(v, passwordRules), passwordKeys)
}
