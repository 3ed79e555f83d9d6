package hrauth

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvConfig is the environment-backed Config implementation.
type EnvConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	resetCodeTTL    time.Duration
	minPasswordLen  int
	mailFrom        string
	smtpHost        string
	smtpPort        string
	smtpUsername    string
	smtpPassword    string
	httpAddr        string
	databaseDSN     string
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from the environment, with a .env file as
// an optional local override source.
func LoadConfig(logger Logger) *EnvConfig {
	if logger == nil {
		logger = defLogger{}
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, relying on system env vars")
	}

	ttl, err := time.ParseDuration(getEnv("RESET_CODE_TTL", "10m"))
	if err != nil {
		logger.Warn("invalid RESET_CODE_TTL, using default", "error", err)
		ttl = DefaultResetCodeTTL
	}

	return &EnvConfig{
		signingKey:      getEnv("SIGNING_KEY", ""),
		tokenExpiration: atoiOrDefault(getEnv("TOKEN_EXPIRATION_HOURS", "24"), 24),
		issuer:          getEnv("TOKEN_ISSUER", "hrauth"),
		resetCodeTTL:    ttl,
		minPasswordLen:  atoiOrDefault(getEnv("MIN_PASSWORD_LENGTH", "8"), DefaultMinPasswordLength),
		mailFrom:        getEnv("MAIL_FROM", ""),
		smtpHost:        getEnv("SMTP_HOST", ""),
		smtpPort:        getEnv("SMTP_PORT", "465"),
		smtpUsername:    getEnv("SMTP_USERNAME", ""),
		smtpPassword:    getEnv("SMTP_PASSWORD", ""),
		httpAddr:        getEnv("HTTP_ADDR", ":8080"),
		databaseDSN:     getEnv("DATABASE_DSN", "file:hrauth.db?cache=shared&mode=rwc"),
	}
}

func (c *EnvConfig) GetSigningKey() string          { return c.signingKey }
func (c *EnvConfig) GetTokenExpiration() int        { return c.tokenExpiration }
func (c *EnvConfig) GetIssuer() string              { return c.issuer }
func (c *EnvConfig) GetResetCodeTTL() time.Duration { return c.resetCodeTTL }
func (c *EnvConfig) GetMinPasswordLength() int      { return c.minPasswordLen }
func (c *EnvConfig) GetMailFrom() string            { return c.mailFrom }
func (c *EnvConfig) GetSMTPHost() string            { return c.smtpHost }
func (c *EnvConfig) GetSMTPPort() string            { return c.smtpPort }
func (c *EnvConfig) GetSMTPUsername() string        { return c.smtpUsername }
func (c *EnvConfig) GetSMTPPassword() string        { return c.smtpPassword }
func (c *EnvConfig) GetHTTPAddr() string            { return c.httpAddr }
func (c *EnvConfig) GetDatabaseDSN() string         { return c.databaseDSN }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func atoiOrDefault(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
