package hrauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// ResetCodeValidMessage is the verify response body for a live challenge.
const ResetCodeValidMessage = "code is valid"

type VerifyResetCodeMessage struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (e VerifyResetCodeMessage) Type() string { return "account.password_reset_verify" }

// VerifyResetCodeHandler is a pure read over the challenge: clients call it
// to confirm a code before showing the new-password form. It never consumes
// the challenge.
type VerifyResetCodeHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

// NewVerifyResetCodeHandler creates a handler with sane defaults.
func NewVerifyResetCodeHandler(repo RepositoryManager) *VerifyResetCodeHandler {
	return &VerifyResetCodeHandler{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock injects a custom clock (useful for tests).
func (h *VerifyResetCodeHandler) WithClock(clock func() time.Time) *VerifyResetCodeHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *VerifyResetCodeHandler) Execute(ctx context.Context, event VerifyResetCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during reset code verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyResetCodeHandler) execute(ctx context.Context, event VerifyResetCodeMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().GetByEmail(ctx, NormalizeEmail(event.Email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidResetCode
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for code verification")
	}

	return checkResetChallenge(account, event.Code, h.now())
}

// checkResetChallenge applies the shared validation order: absence or
// mismatch first, expiry second, so an expired challenge with a wrong code
// still reads as invalid rather than expired.
func checkResetChallenge(account *Account, code string, now time.Time) error {
	if !account.HasResetChallenge() {
		return ErrInvalidResetCode
	}

	if code == "" || *account.ResetCode != code {
		return ErrInvalidResetCode
	}

	if now.After(*account.ResetCodeExpiresAt) {
		return ErrExpiredResetCode
	}

	return nil
}
