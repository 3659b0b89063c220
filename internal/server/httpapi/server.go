// Package httpapi exposes the server's public HTTP surface: a single
// GraphQL endpoint plus a health probe, served over echo.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ficomdev/ficomtest/internal/logging"
	"github.com/ficomdev/ficomtest/internal/server/config"
	"github.com/ficomdev/ficomtest/internal/server/models"
	"github.com/ficomdev/ficomtest/internal/server/services"
	"github.com/ficomdev/ficomtest/internal/server/session"
)

const shutdownTimeout = 5 * time.Second

// UserService is the slice of the user service the HTTP layer depends on.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.User, *services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	VerifyAccessToken(tokenString string) (string, error)
}

// Server hosts the GraphQL API.
type Server struct {
	echo     *echo.Echo
	users    UserService
	sessions *session.Manager
	logger   logging.Logger
	addr     string
}

// NewServer wires the HTTP layer. The session manager is mandatory; it is
// constructed by the caller so that secret validation happens at startup.
func NewServer(cfg *config.Config, users UserService, sessions *session.Manager, logger logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{
		echo:     e,
		users:    users,
		sessions: sessions,
		logger:   logger,
		addr:     cfg.EndpointAddr,
	}

	e.POST("/graphql", s.handleGraphQL)
	e.GET("/healthz", s.handleHealthz)

	return s
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(shutdownCtx, "http server shutting down")
	return s.echo.Shutdown(shutdownCtx)
}
