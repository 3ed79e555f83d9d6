package hrauth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// AuthControllerRoutes holds the paths the controller registers.
type AuthControllerRoutes struct {
	Login          string
	Register       string
	PasswordForgot string
	PasswordVerify string
	PasswordReset  string
}

// AuthController exposes the auth and password-recovery flows as JSON
// endpoints. It is transport only; every decision lives in the handlers
// behind it.
type AuthController struct {
	Logger         Logger
	Repo           RepositoryManager
	Auther         Authenticator
	Mailer         Mailer
	Routes         *AuthControllerRoutes
	MinPasswordLen int
	ResetCodeTTL   time.Duration
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerMinPasswordLength(n int) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if n > 0 {
			c.MinPasswordLen = n
		}
		return c
	}
}

func WithControllerResetCodeTTL(ttl time.Duration) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if ttl > 0 {
			c.ResetCodeTTL = ttl
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:         defLogger{},
		MinPasswordLen: DefaultMinPasswordLength,
		ResetCodeTTL:   DefaultResetCodeTTL,
		Routes: &AuthControllerRoutes{
			Login:          "/auth/login",
			Register:       "/auth/register",
			PasswordForgot: "/password/forgot",
			PasswordVerify: "/password/verify",
			PasswordReset:  "/password/reset",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Mailer == nil {
		c.Mailer = NewLogMailer(c.Logger)
	}

	return c
}

// RegisterAuthRoutes mounts the controller endpoints on the app.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).Name("auth.login")
	app.Post(controller.Routes.Register, controller.RegisterPost).Name("auth.register")
	app.Post(controller.Routes.PasswordForgot, controller.PasswordForgotPost).Name("password.forgot")
	app.Post(controller.Routes.PasswordVerify, controller.PasswordVerifyPost).Name("password.verify")
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).Name("password.reset")

	return controller
}

// LoginPayload is the sign-in request body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.writeParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.writeValidationError(c, err)
	}

	result, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// RegisterPayload is the account creation request body.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(0, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, validation.Required),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.writeParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.writeValidationError(c, err)
	}

	var created *Account

	req := RegisterAccountMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
		OnResponse: func(account *Account) {
			created = account
		},
	}

	register := NewRegisterAccountHandler(a.Repo).
		WithLogger(a.Logger).
		WithMinPasswordLength(a.MinPasswordLen)

	if err := register.Execute(c.UserContext(), req); err != nil {
		return a.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       created.ID,
		"email":    created.Email,
		"username": created.Username,
		"status":   created.Status,
		"roles":    created.RoleNames(),
	})
}

// ForgotPayload is the password recovery request body.
type ForgotPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) PasswordForgotPost(c *fiber.Ctx) error {
	payload := new(ForgotPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.writeParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.writeValidationError(c, err)
	}

	req := InitializePasswordResetMessage{Email: payload.Email}

	initReset := NewInitializePasswordResetHandler(a.Repo, a.Mailer).
		WithLogger(a.Logger).
		WithCodeTTL(a.ResetCodeTTL)

	if err := initReset.Execute(c.UserContext(), req); err != nil {
		// The generic body still goes out; anything else would leak whether
		// the email exists through the error path.
		a.Logger.Error("password reset initialization failed", "error", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": GenericResetMessage,
	})
}

// VerifyPayload is the code pre-check request body.
type VerifyPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Validate will run validation rules
func (r VerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (a *AuthController) PasswordVerifyPost(c *fiber.Ctx) error {
	payload := new(VerifyPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.writeParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.writeValidationError(c, err)
	}

	req := VerifyResetCodeMessage{
		Email: payload.Email,
		Code:  payload.Code,
	}

	verify := NewVerifyResetCodeHandler(a.Repo)

	// The outcome is informational, not a status code: invalid and expired
	// are ordinary 200 answers so the client can message the user.
	if err := verify.Execute(c.UserContext(), req); err != nil {
		switch {
		case goerrors.Is(err, ErrExpiredResetCode):
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"valid":   false,
				"message": ErrExpiredResetCode.Message,
			})
		case goerrors.Is(err, ErrInvalidResetCode):
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"valid":   false,
				"message": ErrInvalidResetCode.Message,
			})
		default:
			return a.writeError(c, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"valid":   true,
		"message": ResetCodeValidMessage,
	})
}

// ResetPayload is the final password change request body.
type ResetPayload struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// Validate will run validation rules
func (r ResetPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (a *AuthController) PasswordResetPost(c *fiber.Ctx) error {
	payload := new(ResetPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.writeParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.writeValidationError(c, err)
	}

	req := FinalizePasswordResetMessage{
		Email:       payload.Email,
		Code:        payload.Code,
		NewPassword: payload.NewPassword,
	}

	finalize := NewFinalizePasswordResetHandler(a.Repo).
		WithLogger(a.Logger).
		WithMinPasswordLength(a.MinPasswordLen)

	if err := finalize.Execute(c.UserContext(), req); err != nil {
		return a.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "password updated",
	})
}

func (a *AuthController) writeParseError(c *fiber.Ctx, err error) error {
	a.Logger.Error("failed to parse request body", "error", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "failed to parse request body",
	})
}

func (a *AuthController) writeValidationError(c *fiber.Ctx, err error) error {
	resp := fiber.Map{"error": "validation failed"}

	if fields := FormatValidationErrorToMap(err); len(fields) > 0 {
		resp["fields"] = fields
	}

	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

// FormatValidationErrorToMap flattens ozzo field errors into a plain map.
func FormatValidationErrorToMap(err error) map[string]string {
	fieldErrs, ok := err.(validation.Errors)
	if !ok {
		return nil
	}

	fields := make(map[string]string, len(fieldErrs))
	for name, fieldErr := range fieldErrs {
		fields[name] = fieldErr.Error()
	}

	return fields
}

// writeError maps a rich error to its HTTP shape. The body carries only the
// message and text code; metadata stays in the logs.
func (a *AuthController) writeError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code > 0 {
		return c.Status(richErr.Code).JSON(fiber.Map{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	}

	a.Logger.Error("unhandled error in auth controller", "error", err)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
