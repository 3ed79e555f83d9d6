package hrauth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// LoginResult is the summary returned by a successful login.
type LoginResult struct {
	Token    string   `json:"token"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Mailer delivers the reset code out of band. A delivery failure must never
// surface as a caller-visible error from the reset flow.
type Mailer interface {
	SendResetCode(ctx context.Context, toEmail, code string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetResetCodeTTL() time.Duration
	GetMinPasswordLength() int
	GetMailFrom() string
	GetSMTPHost() string
	GetSMTPPort() string
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetHTTPAddr() string
	GetDatabaseDSN() string
}

// NewAppLogger returns the default printf-style logger with a custom prefix.
func NewAppLogger(prefix string) Logger {
	if prefix == "" {
		return defLogger{}
	}
	return prefixLogger{prefix: prefix}
}

type prefixLogger struct {
	prefix string
}

func (p prefixLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] "+p.prefix+" "+newline(format), args...)
}

func (p prefixLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] "+p.prefix+" "+newline(format), args...)
}

func (p prefixLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] "+p.prefix+" "+newline(format), args...)
}

func (p prefixLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] "+p.prefix+" "+newline(format), args...)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] HRAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] HRAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] HRAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] HRAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
