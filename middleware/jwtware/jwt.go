package jwtware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup = "header:" + fiber.HeaderAuthorization + ",header:auth-token"

	// ErrMissingToken is returned when no lookup yields a token
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned when the token fails verification or does
	// not carry the role this middleware guards
	ErrInvalidToken = errors.New("invalid token")
)

// Claims mirrors the verified token payload without importing the notes package
type Claims interface {
	// PrincipalID returns the id nested under role, if present
	PrincipalID(role string) (string, bool)
	TokenID() string
	// Expires returns the zero time for tokens without exp
	Expires() time.Time
}

// TokenValidator verifies raw tokens
type TokenValidator interface {
	Validate(tokenString string) (Claims, error)
}

// Identity is what the middleware stores in the request locals
type Identity struct {
	ID        string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// ValidationListener is invoked after a token has been validated and scoped,
// before the identity is attached.
type ValidationListener func(c *fiber.Ctx, claims Claims) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler

	// TokenValidator is required
	TokenValidator TokenValidator

	// Role is the payload key this middleware accepts. Required.
	Role string

	// ContextKey is the locals key for the Identity. Defaults to Role.
	ContextKey string

	// TokenLookup is a comma separated list of source:name pairs, e.g.
	// "header:Authorization,cookie:jwt,query:token,param:token".
	TokenLookup string
	AuthScheme  string

	// Revoked reports whether a token id has been revoked. Optional.
	Revoked func(ctx context.Context, tokenID string) (bool, error)

	// ContextEnricher propagates the identity to the user context. Optional.
	ContextEnricher func(ctx context.Context, id Identity) context.Context

	ValidationListeners []ValidationListener
}

// New returns a fiber handler that authenticates the request for cfg.Role
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, fmt.Errorf("%w: %v", ErrInvalidToken, err))
		}

		id, ok := claims.PrincipalID(cfg.Role)
		if !ok || id == "" {
			return cfg.ErrorHandler(c, fmt.Errorf("%w: no %s principal in payload", ErrInvalidToken, cfg.Role))
		}

		if cfg.Revoked != nil && claims.TokenID() != "" {
			revoked, err := cfg.Revoked(c.UserContext(), claims.TokenID())
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}
			if revoked {
				return cfg.ErrorHandler(c, fmt.Errorf("%w: token revoked", ErrInvalidToken))
			}
		}

		if err := cfg.runValidationListeners(c, claims); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		identity := Identity{
			ID:        id,
			Role:      cfg.Role,
			TokenID:   claims.TokenID(),
			ExpiresAt: claims.Expires(),
		}
		c.Locals(cfg.ContextKey, identity)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), identity))
		}

		return cfg.SuccessHandler(c)
	}
}

// ExtractRawToken runs extractors in order and returns the first token found
func ExtractRawToken(c *fiber.Ctx, extractors []Extractor) (string, error) {
	for _, extractor := range extractors {
		if raw, ok := extractor(c); ok {
			return raw, nil
		}
	}
	return "", ErrMissingToken
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			msg := "Please authenticate using a valid token"
			if errors.Is(err, ErrMissingToken) {
				msg = ErrMissingToken.Error()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}
	}

	if cfg.TokenValidator == nil {
		panic("NOTES: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.Role == "" {
		panic("NOTES: JWT middleware configuration: Role is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = cfg.Role
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []Extractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, claims Claims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, claims); err != nil {
			return err
		}
	}
	return nil
}

// Extractor pulls a raw token from the request
type Extractor func(c *fiber.Ctx) (string, bool)

// GetExtractors parses a lookup string such as
// "header:Authorization,cookie:jwt,query:auth_token,param:token".
// Unknown sources are ignored.
func GetExtractors(tokenLookup string, authSchemes ...string) []Extractor {
	extractors := make([]Extractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}
		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}

		switch source {
		case "header":
			extractors = append(extractors, fromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, fromQuery(name))
		case "param":
			extractors = append(extractors, fromParam(name))
		case "cookie":
			extractors = append(extractors, fromCookie(name))
		}
	}

	return extractors
}

// fromHeader reads a header. The Authorization header must carry the auth
// scheme; any other header may hold the bare token.
func fromHeader(header, authScheme string) Extractor {
	requireScheme := strings.EqualFold(header, fiber.HeaderAuthorization)
	l := len(authScheme)

	return func(c *fiber.Ctx) (string, bool) {
		v := strings.TrimSpace(c.Get(header))
		if v == "" {
			return "", false
		}
		if len(v) > l+1 && strings.EqualFold(v[:l], authScheme) && v[l] == ' ' {
			v = strings.TrimSpace(v[l:])
			return v, v != ""
		}
		if requireScheme {
			return "", false
		}
		return v, true
	}
}

func fromQuery(param string) Extractor {
	return func(c *fiber.Ctx) (string, bool) {
		token := c.Query(param)
		return token, token != ""
	}
}

func fromParam(param string) Extractor {
	return func(c *fiber.Ctx) (string, bool) {
		token := c.Params(param)
		return token, token != ""
	}
}

func fromCookie(name string) Extractor {
	return func(c *fiber.Ctx) (string, bool) {
		token := c.Cookies(name)
		return token, token != ""
	}
}
