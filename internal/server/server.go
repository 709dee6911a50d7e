// Package server registers the filter-flow view and the table API on an
// echo router mounted under a configurable base path.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/config"
	"github.com/kyleking/filter-flow/internal/errors"
	"github.com/kyleking/filter-flow/internal/logging"
	"github.com/kyleking/filter-flow/internal/monitor"
)

// Server serves the view and API over HTTP
type Server struct {
	echo            *echo.Echo
	addr            string
	base            string
	shutdownTimeout time.Duration
	logger          *logging.Logger
	monitor         *monitor.RuntimeMonitor
}

const monitorInterval = 15 * time.Second

// New builds a server for provider using cfg. A nil logger uses the global one.
func New(cfg config.ServerConfig, provider catalog.Provider, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeoutDuration()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(requestLogger(logger))

	base := NormalizeBase(cfg.BaseURL)
	mon := monitor.NewRuntimeMonitor()
	registerRoutes(e, base, provider, mon)

	return &Server{
		echo:            e,
		addr:            cfg.Addr,
		base:            base,
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
		logger:          logger,
		monitor:         mon,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Base returns the normalized base path
func (s *Server) Base() string {
	return s.base
}

// URL returns the path of the named route
func (s *Server) URL(name string, params ...interface{}) string {
	return s.echo.Reverse(name, params...)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.echo.Server.Addr = s.addr

	s.monitor.Start(ctx, monitorInterval)
	defer s.monitor.Stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.echo.StartServer(s.echo.Server)
	}()

	s.logger.WithFields(map[string]interface{}{
		"addr": s.addr,
		"base": s.base,
	}).Info("Server listening")

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return errors.Wrapf(err, errors.ErrTypeNetwork, "failed to serve on %s", s.addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrTypeNetwork, "failed to shut down server")
	}

	s.logger.Info("Server stopped")

	return nil
}

// requestLogger logs one line per request with status and duration
func requestLogger(logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			entry := logger.WithFields(map[string]interface{}{
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     res.Status,
				"duration":   time.Since(start),
				"request_id": res.Header().Get(echo.HeaderXRequestID),
			})

			if res.Status >= http.StatusInternalServerError {
				entry.ErrorWithErr("Request failed", err)
			} else {
				entry.Debug("Request served")
			}

			return nil
		}
	}
}
