// Package testutil builds fully wired servers over in-memory SQLite for
// tests.
package testutil

import (
	"testing"

	"github.com/deppfellow/go-products/internal/config"
	"github.com/deppfellow/go-products/internal/handler"
	"github.com/deppfellow/go-products/internal/logger"
	"github.com/deppfellow/go-products/internal/repository"
	"github.com/deppfellow/go-products/internal/router"
	"github.com/deppfellow/go-products/internal/server"
	"github.com/deppfellow/go-products/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// NewTestConfig returns a valid config using a private in-memory database.
func NewTestConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  5,
			WriteTimeout: 5,
			IdleTimeout:  5,
			BodyLimit:    "1M",
		},
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			Name:         ":memory:",
			MaxOpenConns: 1,
			AutoMigrate:  true,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

// NewTestServer starts a Server on cfg, or on NewTestConfig when cfg is
// nil, and closes it when the test ends.
func NewTestServer(t *testing.T, cfg *config.Config) *server.Server {
	t.Helper()

	if cfg == nil {
		cfg = NewTestConfig()
	}

	log := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.WarnLevel)

	s, err := server.New(cfg, &log, logger.NewLoggerService(cfg.Observability))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.DB.Close()
	})

	return s
}

// NewTestRouter wires repositories, services and handlers on a test server.
func NewTestRouter(t *testing.T) (*echo.Echo, *server.Server) {
	t.Helper()
	return NewTestRouterWithConfig(t, nil)
}

// NewTestRouterWithConfig is NewTestRouter over cfg.
func NewTestRouterWithConfig(t *testing.T, cfg *config.Config) (*echo.Echo, *server.Server) {
	t.Helper()

	s := NewTestServer(t, cfg)

	repos := repository.NewRepositories(s)
	services := service.NewServices(s, repos)
	handlers := handler.NewHandlers(s, services)

	return router.NewRouter(s, handlers), s
}
