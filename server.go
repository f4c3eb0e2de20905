package notes

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ServerConfig is Config plus the server level options
type ServerConfig interface {
	Config
	GetRequestTimeout() time.Duration
}

// Server wires the repositories, services and controllers into a fiber app
type Server struct {
	app      *fiber.App
	repo     RepositoryManager
	tokens   *TokenService
	admins   *Accounts
	users    *Accounts
	notes    *NoteService
	auth     *RouteAuthenticator
	logger   Logger
	denylist *RevokedTokens
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithServerLogger sets the logger used by every component
func WithServerLogger(logger Logger) ServerOption {
	return func(s *Server) {
		s.logger = normalizeLogger(logger)
	}
}

// NewServer builds the application. It fails when the signing key is missing.
func NewServer(cfg ServerConfig, repo RepositoryManager, accessLog io.Writer, opts ...ServerOption) (*Server, error) {
	s := &Server{repo: repo, logger: defLogger()}
	for _, opt := range opts {
		opt(s)
	}

	if err := repo.Validate(); err != nil {
		return nil, err
	}

	tokens, err := NewTokenService(cfg, WithTokenLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.tokens = tokens

	hasher := NewBcryptHasher(cfg.GetBcryptCost())

	var sink ActivitySink = noopActivitySink{}
	if cfg.GetAuditLog() {
		sink = NewInfoActivitySink(repo.Infos())
	}

	s.admins = NewAccounts(RoleAdmin, repo.Admins(), hasher, tokens).
		WithLogger(s.logger).
		WithActivitySink(sink)
	s.users = NewAccounts(RoleUser, repo.Users(), hasher, tokens).
		WithLogger(s.logger).
		WithActivitySink(sink).
		WithDeleter(repo.DeleteUser)
	s.notes = NewNoteService(repo.Notes(), repo.Users())

	auth, err := NewHTTPAuthenticator(tokens, cfg)
	if err != nil {
		return nil, err
	}
	auth.Logger = s.logger
	if cfg.GetTokenRevocation() {
		s.denylist = repo.RevokedTokens()
		auth.WithDenylist(s.denylist)
	}
	s.auth = auth

	s.app = NewApp(AppOptions{
		Logger:         s.logger,
		AccessLog:      accessLog,
		RequestTimeout: cfg.GetRequestTimeout(),
	})
	s.mount(cfg.GetAuditLog())

	return s, nil
}

func (s *Server) mount(audit bool) {
	api := s.app.Group("/api")

	admin := api.Group("/admin")
	RegisterPrincipalRoutes(admin,
		WithAccounts(s.admins),
		WithRouteAuthenticator(s.auth),
		WithRoutes(AdminRoutes),
		WithControllerLogger(s.logger),
	)

	ac := &AdminController{
		Logger: s.logger,
		Admins: s.admins,
		Users:  s.users,
		Notes:  s.notes,
		Auth:   s.auth,
	}
	if audit {
		ac.Infos = s.repo.Infos()
	}
	RegisterAdminRoutes(admin, ac)

	RegisterPrincipalRoutes(api.Group("/auth"),
		WithAccounts(s.users),
		WithRouteAuthenticator(s.auth),
		WithRoutes(UserRoutes),
		WithControllerLogger(s.logger),
	)

	RegisterNoteRoutes(api.Group("/notes"), &NotesController{
		Notes: s.notes,
		Auth:  s.auth,
	})
}

// App returns the fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Tokens returns the token service
func (s *Server) Tokens() *TokenService {
	return s.tokens
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// PruneRevoked drops denylist entries for expired tokens every interval
// until ctx is done. It is a no-op when revocation is disabled.
func (s *Server) PruneRevoked(ctx context.Context, interval time.Duration) {
	if s.denylist == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.denylist.Prune(ctx, now)
			if err != nil {
				s.logger.Warn("failed to prune revoked tokens", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("pruned revoked tokens", "count", n)
			}
		}
	}
}
