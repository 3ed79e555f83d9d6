package hrauth

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the lifecycle status of an account
type AccountStatus string

const (
	// AccountStatusActive accounts may authenticate
	AccountStatusActive AccountStatus = "active"
	// AccountStatusInactive accounts fail authentication even with valid credentials
	AccountStatusInactive AccountStatus = "inactive"
)

// ParseAccountStatus parses a stored status string. An unknown value is a
// reported error, never a silent fallback to a default status.
func ParseAccountStatus(raw string) (AccountStatus, error) {
	switch AccountStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case AccountStatusActive:
		return AccountStatusActive, nil
	case AccountStatusInactive:
		return AccountStatusInactive, nil
	default:
		return "", errors.New("unknown account status", errors.CategoryValidation).
			WithTextCode("UNKNOWN_ACCOUNT_STATUS").
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"status": raw})
	}
}

// Role name conventions, uppercase by convention
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

// Account is the credential record backing authentication. The password hash
// is opaque and never serialized; the reset challenge is embedded so a code
// and its expiry are always written as one row update.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email        string        `bun:"email,notnull,unique" json:"email,omitempty"`
	Username     string        `bun:"username,notnull" json:"username,omitempty"`
	PasswordHash string        `bun:"password_hash,notnull" json:"-"`
	Status       AccountStatus `bun:"status,notnull" json:"status,omitempty"`
	Roles        []*Role       `bun:"m2m:account_roles,join:Account=Role" json:"roles,omitempty"`

	ResetCode          *string    `bun:"reset_code,nullzero" json:"-"`
	ResetCodeExpiresAt *time.Time `bun:"reset_code_expires_at,nullzero" json:"-"`

	LoginAttempts  int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// RoleNames returns the names of the roles attached to the account.
func (a *Account) RoleNames() []string {
	if a == nil || len(a.Roles) == 0 {
		return nil
	}

	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		if r != nil && r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}

// HasResetChallenge reports whether a code and expiry pair is present.
// Expiry is checked by the caller so the error message can distinguish an
// expired challenge from a missing one.
func (a *Account) HasResetChallenge() bool {
	return a != nil && a.ResetCode != nil && *a.ResetCode != "" && a.ResetCodeExpiresAt != nil
}

// Role is a named permission group. Tokens carry role names, not ids, so
// token validation never touches the store.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rl"`

	ID          uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name        string    `bun:"name,notnull,unique" json:"name,omitempty"`
	Description string    `bun:"description" json:"description,omitempty"`
}

// AccountRole is the m2m join between accounts and roles.
type AccountRole struct {
	bun.BaseModel `bun:"table:account_roles,alias:acr"`

	AccountID uuid.UUID `bun:"account_id,pk,type:uuid" json:"account_id,omitempty"`
	Account   *Account  `bun:"rel:belongs-to,join:account_id=id" json:"account,omitempty"`
	RoleID    uuid.UUID `bun:"role_id,pk,type:uuid" json:"role_id,omitempty"`
	Role      *Role     `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
}

// NormalizeEmail lower-cases and trims an email. Applied on write and on
// every lookup so comparisons are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
