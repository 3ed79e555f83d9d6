package hrauth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeAccountDisabled    = "ACCOUNT_DISABLED"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	TextCodeUnknownRole        = "UNKNOWN_ROLE"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeForbidden          = "FORBIDDEN"
	TextCodeInvalidResetCode   = "INVALID_RESET_CODE"
	TextCodeExpiredResetCode   = "EXPIRED_RESET_CODE"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenSignature     = "TOKEN_SIGNATURE_MISMATCH"
	TextCodeTooManyAttempts    = "TOO_MANY_LOGIN_ATTEMPTS"
)

// ErrInvalidCredentials is returned for an unknown email AND for a wrong
// password. The single value keeps both responses byte-identical so callers
// cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when credentials verify but the account is inactive.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateEmail is returned when registering an email that already exists.
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryValidation).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeBadRequest)

// ErrUnknownRole is returned when registration names a role that does not exist.
var ErrUnknownRole = errors.New("unknown role", errors.CategoryValidation).
	WithTextCode(TextCodeUnknownRole).
	WithCode(errors.CodeBadRequest)

// ErrUnauthenticated covers missing, malformed, tampered and expired bearer
// tokens on protected routes. Validation failures never degrade to an
// anonymous identity.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when a valid token lacks the required role.
var ErrForbidden = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrInvalidResetCode covers no account, no challenge, a wrong code, and a
// consumed code.
var ErrInvalidResetCode = errors.New("invalid reset code", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidResetCode).
	WithCode(errors.CodeBadRequest)

// ErrExpiredResetCode is returned when the challenge exists but its expiry has passed.
var ErrExpiredResetCode = errors.New("reset code expired", errors.CategoryValidation).
	WithTextCode(TextCodeExpiredResetCode).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is the typed validation failure for an expired token.
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is the typed validation failure for an unparseable token.
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignature is the typed validation failure for a bad signature or a
// signing method other than the configured one.
var ErrTokenSignature = errors.New("token signature mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned when the cool-down window is active.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch signal; the
// authenticator folds it into ErrInvalidCredentials before it reaches a caller.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
