package hrauth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// MaxLoginAttempts is the number of failed attempts an account gets inside a
// cool-down window before logins are refused outright.
var MaxLoginAttempts = 5

// CoolDownPeriod is the window in which failed attempts accumulate.
var CoolDownPeriod = 24 * time.Hour

// Auther verifies submitted credentials against the store and turns them
// into a signed token plus a login summary.
type Auther struct {
	repo             RepositoryManager
	tokens           TokenService
	logger           Logger
	maxLoginAttempts int
	coolDownPeriod   time.Duration
	now              func() time.Time
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator backed by the given store and
// token service.
func NewAuthenticator(repo RepositoryManager, tokens TokenService) *Auther {
	return &Auther{
		repo:             repo,
		tokens:           tokens,
		logger:           defLogger{},
		maxLoginAttempts: MaxLoginAttempts,
		coolDownPeriod:   CoolDownPeriod,
		now:              time.Now,
	}
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithClock injects a custom clock (useful for tests).
func (a *Auther) WithClock(clock func() time.Time) *Auther {
	if clock != nil {
		a.now = clock
	}
	return a
}

// WithLoginThrottle overrides the attempt limit and cool-down window.
func (a *Auther) WithLoginThrottle(maxAttempts int, coolDown time.Duration) *Auther {
	a.maxLoginAttempts = maxAttempts
	a.coolDownPeriod = coolDown
	return a
}

// Login runs the (email, password) -> (token, summary) transition.
// An unknown email and a wrong password both come back as
// ErrInvalidCredentials; nothing in the response distinguishes them.
func (a *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := a.repo.Accounts().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			a.logger.Debug("login for unknown email", "email", NormalizeEmail(email))
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during login")
	}

	attempts := account.LoginAttempts
	if account.LoginAttemptAt != nil && a.now().Sub(*account.LoginAttemptAt) > a.coolDownPeriod {
		attempts = 0
	}

	if attempts > a.maxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to verify password")
		}
		if err := a.repo.Accounts().TrackAttemptedLogin(ctx, account); err != nil {
			a.logger.Error("failed to track login attempt", "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	status, err := ParseAccountStatus(string(account.Status))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "account has an invalid status")
	}

	if status == AccountStatusInactive {
		a.logger.Warn("login blocked for disabled account", "email", account.Email)
		return nil, ErrAccountDisabled
	}

	if err := a.repo.Accounts().TrackSuccessfulLogin(ctx, account); err != nil {
		a.logger.Error("failed to track successful login", "error", err)
	}

	token, err := a.tokens.Issue(account.Email, account.RoleNames())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue token")
	}

	return &LoginResult{
		Token:    token,
		Email:    account.Email,
		Username: account.Username,
		Roles:    account.RoleNames(),
	}, nil
}
