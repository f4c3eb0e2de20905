package notes

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/middleware/jwtware"
)

// RouteAuthenticator builds the role scoped middlewares
type RouteAuthenticator struct {
	verifier  TokenVerifier
	cfg       Config
	denylist  TokenDenylist
	listeners []ValidationListener
	Logger    Logger
}

func NewHTTPAuthenticator(verifier TokenVerifier, cfg Config) (*RouteAuthenticator, error) {
	if verifier == nil {
		return nil, goerrors.New("token verifier is required", goerrors.CategoryBadInput)
	}
	if cfg == nil {
		return nil, goerrors.New("config is required", goerrors.CategoryBadInput)
	}
	return &RouteAuthenticator{
		verifier: verifier,
		cfg:      cfg,
		Logger:   defLogger(),
	}, nil
}

// WithDenylist enables revocation checks
func (a *RouteAuthenticator) WithDenylist(d TokenDenylist) *RouteAuthenticator {
	a.denylist = d
	return a
}

// WithValidationListeners adds listeners run by every protected route
func (a *RouteAuthenticator) WithValidationListeners(listeners ...ValidationListener) *RouteAuthenticator {
	a.listeners = append(a.listeners, listeners...)
	return a
}

// Revocable reports whether logout can revoke tokens
func (a *RouteAuthenticator) Revocable() bool {
	return a.denylist != nil
}

// ProtectedRoute returns the middleware for role. Failures are passed to the
// app error handler.
func (a *RouteAuthenticator) ProtectedRoute(role Role) fiber.Handler {
	cfg := jwtware.Config{
		TokenValidator:  validatorFor(a.verifier),
		Role:            string(role),
		TokenLookup:     a.cfg.GetTokenLookup(),
		ContextEnricher: identityEnricher,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return err
		},
	}
	if a.denylist != nil {
		cfg.Revoked = a.denylist.IsRevoked
	}
	RegisterValidationListeners(&cfg, a.listeners...)
	return jwtware.New(cfg)
}

// Logout revokes the token behind id
func (a *RouteAuthenticator) Logout(ctx context.Context, id Identity) error {
	if a.denylist == nil {
		return derive(ErrNotFound, "Token revocation is disabled", nil)
	}
	return a.denylist.Revoke(ctx, id.TokenID, id.ExpiresAt)
}

// NewErrorHandler renders taxonomy errors. Internal failures are logged and
// answered with a generic message.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code != fiber.StatusNotFound && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		e := AsError(err)
		status := HTTPStatus(e)

		if status >= fiber.StatusInternalServerError {
			attrs := []any{
				"error", err,
				"method", c.Method(),
				"path", c.Path(),
				"request_id", requestID(c),
			}
			for k, v := range e.Metadata {
				attrs = append(attrs, k, v)
			}
			logger.Error("request failed", attrs...)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrInternal.Message})
		}

		logger.Debug("request rejected",
			"error", err,
			"status", status,
			"path", c.Path(),
			"request_id", requestID(c),
		)

		switch {
		case IsError(e, ErrValidation):
			if fields := fieldErrors(e); len(fields) > 0 {
				return c.Status(status).JSON(fiber.Map{"success": false, "errors": fields})
			}
			return c.Status(status).JSON(fiber.Map{"success": false, "errors": e.Message})
		case IsError(e, ErrDuplicateCredential), IsError(e, ErrInvalidCredentials):
			return c.Status(status).JSON(fiber.Map{"success": false, "errors": e.Message})
		default:
			return c.Status(status).JSON(fiber.Map{"error": e.Message})
		}
	}
}

type fieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

func fieldErrors(e *goerrors.Error) []fieldError {
	if len(e.ValidationErrors) == 0 {
		return nil
	}
	out := make([]fieldError, 0, len(e.ValidationErrors))
	for _, fe := range e.ValidationErrors {
		out = append(out, fieldError{Param: fe.Field, Msg: fe.Message})
	}
	return out
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}

// RequestTimeout bounds the user context of every request
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AppOptions configures NewApp
type AppOptions struct {
	Name           string
	Logger         Logger
	AccessLog      io.Writer
	RequestTimeout time.Duration
}

// NewApp returns a fiber app with the JSON error handler and the common
// middleware stack installed.
func NewApp(opts AppOptions) *fiber.App {
	name := opts.Name
	if name == "" {
		name = "notesd"
	}

	app := fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: NewErrorHandler(opts.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
			Output: opts.AccessLog,
		}))
	}
	app.Use(cors.New())
	app.Use(RequestTimeout(opts.RequestTimeout))

	return app
}

func bindBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return derive(ErrValidation, "Malformed request body", err)
	}
	return nil
}

func identityOrFail(c *fiber.Ctx, role Role) (Identity, error) {
	id, ok := IdentityFromContext(c.UserContext())
	if !ok || id.ID == "" || id.Role != string(role) {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
