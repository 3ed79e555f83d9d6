package hrauth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultClaimsContextKey is the Locals key the gate binds claims under.
const DefaultClaimsContextKey = "claims"

const bearerScheme = "Bearer"

// RouteRoles maps a registered route path to the role set allowed to call
// it ("any of" semantics). It is the single source of truth consulted by
// RequireRoles; handlers do not repeat role checks inline. A route with no
// entry only requires authentication.
type RouteRoles map[string][]string

// GateOption customizes the authorization gate middleware.
type GateOption func(*gateConfig)

type gateConfig struct {
	contextKey string
	logger     Logger
}

// WithGateContextKey overrides the Locals key used for the claims binding.
func WithGateContextKey(key string) GateOption {
	return func(g *gateConfig) {
		if key != "" {
			g.contextKey = key
		}
	}
}

// WithGateLogger overrides the gate logger.
func WithGateLogger(logger Logger) GateOption {
	return func(g *gateConfig) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func newGateConfig(opts ...GateOption) *gateConfig {
	cfg := &gateConfig{
		contextKey: DefaultClaimsContextKey,
		logger:     defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// RequireAuth extracts the bearer token, validates it and binds the claims
// to the request. It runs before any handler logic; a missing or invalid
// token terminates the request, never falls through as anonymous.
func RequireAuth(validator TokenValidator, opts ...GateOption) fiber.Handler {
	cfg := newGateConfig(opts...)

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return writeUnauthenticated(c)
		}

		claims, err := validator.Validate(raw)
		if err != nil {
			// The kind matters for the log line only; the response is a flat 401.
			switch {
			case IsTokenExpiredError(err):
				cfg.logger.Info("rejected expired token", "path", c.Path())
			case IsMalformedError(err):
				cfg.logger.Info("rejected malformed token", "path", c.Path())
			default:
				cfg.logger.Warn("rejected token", "path", c.Path(), "error", err)
			}
			return writeUnauthenticated(c)
		}

		c.Locals(cfg.contextKey, claims)
		c.SetUserContext(WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

// RequireRoles compares the bound claims against the declarative route->role
// mapping. Role mismatch is a 403, distinct from the gate's 401.
func RequireRoles(routes RouteRoles, opts ...GateOption) fiber.Handler {
	cfg := newGateConfig(opts...)

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromFiber(c, cfg.contextKey)
		if !ok {
			return writeUnauthenticated(c)
		}

		required := routes[c.Route().Path]
		if len(required) == 0 {
			return c.Next()
		}

		if !claims.HasAnyRole(required...) {
			cfg.logger.Info("role check failed",
				"path", c.Route().Path,
				"subject", claims.Subject(),
				"required", strings.Join(required, ","),
			)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": ErrForbidden.Message,
				"code":  ErrForbidden.TextCode,
			})
		}

		return c.Next()
	}
}

// ClaimsFromFiber extracts the bound AuthClaims from the fiber context.
func ClaimsFromFiber(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = DefaultClaimsContextKey
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func writeUnauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": ErrUnauthenticated.Message,
		"code":  ErrUnauthenticated.TextCode,
	})
}
