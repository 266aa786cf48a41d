// Package httpapi exposes the identity core over HTTP. Routing and
// middleware use chi; handlers translate the service error taxonomy into
// status codes and the response shapes the frontend expects.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/isaidso/auth/internal/logging"
	"github.com/isaidso/auth/internal/server/config"
	"github.com/isaidso/auth/internal/server/models"
	"github.com/isaidso/auth/internal/server/oauth"
	"github.com/isaidso/auth/internal/server/services"
)

// The handler layer talks to the services through these narrow interfaces so
// tests can substitute fakes.

type identitySvc interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	ResolveByPassword(ctx context.Context, email, password string) (*models.User, error)
	ResolveOrLinkFederated(ctx context.Context, externalID, email, displayName, avatarURL string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, params services.UpdateProfileParams) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type tokenSvc interface {
	Validate(ctx context.Context, plaintext string) (*models.Token, error)
	Revoke(ctx context.Context, tokenID string) error
	Rotate(ctx context.Context, refreshPlaintext string) (*services.TokenPair, string, error)
	IssuePairForUser(ctx context.Context, userID string) (*services.TokenPair, error)
}

type credentialSvc interface {
	IssueEmailVerification(ctx context.Context, user *models.User) error
	IssuePasswordReset(ctx context.Context, email string) error
	ConsumeEmailVerification(ctx context.Context, secret string) (*models.User, *services.TokenPair, error)
	ConsumePasswordReset(ctx context.Context, secret, email, newPassword string) (*models.User, *services.TokenPair, error)
}

type deviceSvc interface {
	Record(ctx context.Context, userID, ip, userAgent string)
}

// Server wires the HTTP surface to the identity services.
type Server struct {
	config      *config.Config
	logger      logging.Logger
	identity    identitySvc
	tokens      tokenSvc
	credentials credentialSvc
	devices     deviceSvc
	provider    oauth.Provider
}

func NewServer(cfg *config.Config, l logging.Logger,
	identity identitySvc, tokens tokenSvc,
	credentials credentialSvc, devices deviceSvc,
	provider oauth.Provider) *Server {
	return &Server{
		config:      cfg,
		logger:      l.With("module", "httpapi"),
		identity:    identity,
		tokens:      tokens,
		credentials: credentials,
		devices:     devices,
		provider:    provider,
	}
}

// Router builds the chi router with the public and bearer-protected routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/refresh", s.handleRefresh)
	r.Get("/auth/verify-email/{token}", s.handleVerifyEmail)
	r.Post("/auth/forgot-password", s.handleForgotPassword)
	r.Post("/auth/reset-password", s.handleResetPassword)
	r.Get("/auth/google", s.handleGoogleRedirect)
	r.Get("/auth/google/callback", s.handleGoogleCallback)
	r.Post("/auth/google/callback", s.handleGoogleCallback)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAccessToken)
		r.Post("/logout", s.handleLogout)
		r.Get("/user", s.handleUser)
		r.Post("/profile/update", s.handleUpdateProfile)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.EndpointAddr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting HTTP server", "address", s.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
