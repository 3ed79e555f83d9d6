package hrauth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// DefaultMinPasswordLength is the floor for new passwords unless overridden
// through configuration.
const DefaultMinPasswordLength = 8

type RegisterAccountMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	OnResponse func(account *Account)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler creates an active account bound to a single named
// role. Registration never issues a token; login is a separate call.
type RegisterAccountHandler struct {
	repo           RepositoryManager
	logger         Logger
	minPasswordLen int
}

// NewRegisterAccountHandler creates a handler with sane defaults.
func NewRegisterAccountHandler(repo RepositoryManager) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:           repo,
		logger:         defLogger{},
		minPasswordLen: DefaultMinPasswordLength,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterAccountHandler) WithLogger(logger Logger) *RegisterAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithMinPasswordLength overrides the password length floor.
func (h *RegisterAccountHandler) WithMinPasswordLength(n int) *RegisterAccountHandler {
	if n > 0 {
		h.minPasswordLen = n
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if len(event.Password) < h.minPasswordLen {
		return goerrors.New("password is too short", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"min_length": h.minPasswordLen})
	}

	email := NormalizeEmail(event.Email)

	exists, err := h.repo.Accounts().ExistsByEmail(ctx, email)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
	}
	if exists {
		return ErrDuplicateEmail
	}

	role, err := h.repo.Roles().GetByName(ctx, event.Role)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUnknownRole
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve role")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account := &Account{
		Email:        email,
		Username:     getUsername(event.Username, email),
		PasswordHash: hash,
		Status:       AccountStatusActive,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if account, err = h.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		if err := h.repo.Accounts().AssignRoleTx(ctx, tx, account.ID, role.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not assign role")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	account.Roles = []*Role{role}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	return nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
