package hrauth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// DefaultResetCodeTTL is how long a reset code stays valid.
const DefaultResetCodeTTL = 10 * time.Minute

// GenericResetMessage is returned whether or not the email exists, so the
// forgot-password endpoint cannot be used to enumerate accounts.
const GenericResetMessage = "if the email exists, a code was sent"

// GenerateResetCode draws a 6-digit code from a cryptographically strong
// source, uniform over 100000-999999.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset code")
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

type InitializePasswordResetMessage struct {
	Email string `json:"email"`

	OnResponse func(resp *InitializePasswordResetResponse)
}

func (e InitializePasswordResetMessage) Type() string { return "account.password_reset" }

type InitializePasswordResetResponse struct {
	Message string
	Issued  bool
}

// InitializePasswordResetHandler binds a fresh challenge to the account.
// A repeated call overwrites the previous challenge; only the newest code is
// ever valid.
type InitializePasswordResetHandler struct {
	repo    RepositoryManager
	mailer  Mailer
	logger  Logger
	codeTTL time.Duration
	now     func() time.Time
	genCode func() (string, error)
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:    repo,
		mailer:  mailer,
		logger:  defLogger{},
		codeTTL: DefaultResetCodeTTL,
		now:     time.Now,
		genCode: GenerateResetCode,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithCodeTTL overrides the challenge lifetime.
func (h *InitializePasswordResetHandler) WithCodeTTL(ttl time.Duration) *InitializePasswordResetHandler {
	if ttl > 0 {
		h.codeTTL = ttl
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *InitializePasswordResetHandler) WithClock(clock func() time.Time) *InitializePasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

// WithCodeGenerator injects a custom code source (useful for tests).
func (h *InitializePasswordResetHandler) WithCodeGenerator(gen func() (string, error)) *InitializePasswordResetHandler {
	if gen != nil {
		h.genCode = gen
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &InitializePasswordResetResponse{Message: GenericResetMessage}
	email := NormalizeEmail(event.Email)

	account, err := h.repo.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// No state change, same message: unknown emails are indistinguishable.
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
	}

	code, err := h.genCode()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset code")
	}

	expiresAt := h.now().Add(h.codeTTL)

	if err := h.repo.Accounts().SetResetChallenge(ctx, account.ID, code, expiresAt); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset challenge")
	}

	// The code is durable at this point; delivery failure is logged and
	// swallowed so the flow can still complete out of band.
	go func() {
		sendCtx, sendCancel := context.WithTimeout(context.Background(), time.Second*30)
		defer sendCancel()

		if err := h.mailer.SendResetCode(sendCtx, email, code); err != nil {
			h.logger.Warn("reset code delivery failed", "email", email, "error", err)
		}
	}()

	resp.Issued = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
