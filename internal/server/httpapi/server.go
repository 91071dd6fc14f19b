// Package httpapi exposes the public HTTP surface: registration, the token
// endpoints, and document upload/download.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vkuzmin/dockeeper/internal/logging"
	"github.com/vkuzmin/dockeeper/internal/server/config"
	"github.com/vkuzmin/dockeeper/internal/server/models"
	"github.com/vkuzmin/dockeeper/internal/server/services"
)

// AuthService is the slice of the auth service the HTTP layer needs.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*services.AuthResult, error)
	ResolveUserFromToken(ctx context.Context, token string) (*models.User, error)
}

// UserService handles registration.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

// DocumentService stores and retrieves uploaded documents.
type DocumentService interface {
	SaveUpload(ctx context.Context, filename, mimeType, uri string, data []byte) (*models.Document, error)
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
}

// Server wires the services into a gin engine and owns the http.Server
// lifecycle.
type Server struct {
	address          string
	engine           *gin.Engine
	logger           logging.Logger
	auth             AuthService
	users            UserService
	documents        DocumentService
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	shutdownDeadline time.Duration
}

// NewServer builds the router. It does not bind the port; call Run.
func NewServer(cfg *config.Config, l logging.Logger, auth AuthService, users UserService, documents DocumentService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		address:          cfg.EndpointAddrHTTP,
		engine:           gin.New(),
		logger:           l.With("module", "http_server"),
		auth:             auth,
		users:            users,
		documents:        documents,
		accessTokenTTL:   cfg.AccessTokenValidityDuration,
		refreshTokenTTL:  cfg.RefreshTokenValidityDuration,
		shutdownDeadline: 5 * time.Second,
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)
	s.engine.POST("/users", s.registerUser)
	s.engine.POST("/auth/login", s.login)
	s.engine.POST("/auth/refresh", s.refresh)

	protected := s.engine.Group("/documents", s.requireAuth())
	protected.POST("", s.uploadDocument)
	protected.GET("/:id", s.downloadDocument)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownDeadline)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
