package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/go-products/internal/middleware"
	"github.com/deppfellow/go-products/internal/server"
	"github.com/labstack/echo/v4"
)

// APIMessage is the body of GET /api.
const APIMessage = "Desde API"

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// APIRoot godoc
// @Summary API liveness message
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) APIRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"msg": APIMessage})
}

// CheckHealth reports the database (and Redis, when configured). It
// answers 503 when the database is down; Redis is informational.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
	}

	healthCfg := h.server.Config.Observability.HealthChecks
	if !healthCfg.Enabled {
		return c.JSON(http.StatusOK, response)
	}

	checks := map[string]any{}
	response["checks"] = checks
	isHealthy := true

	dbStart := time.Now()
	if err := h.ping(c, h.server.DB.Ping); err != nil {
		checks["database"] = map[string]any{
			"status":        "unhealthy",
			"response_time": time.Since(dbStart).String(),
			"error":         err.Error(),
		}
		isHealthy = false

		logger.Error().
			Err(err).
			Dur("response_time", time.Since(dbStart)).
			Msg("database health check failed")
		h.recordHealthError("database", err)
	} else {
		checks["database"] = map[string]any{
			"status":        "healthy",
			"response_time": time.Since(dbStart).String(),
		}
	}

	if h.server.Redis != nil {
		redisStart := time.Now()
		err := h.ping(c, func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
		if err != nil {
			checks["redis"] = map[string]any{
				"status":        "unhealthy",
				"response_time": time.Since(redisStart).String(),
				"error":         err.Error(),
			}

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(redisStart)).
				Msg("redis health check failed")
			h.recordHealthError("redis", err)
		} else {
			checks["redis"] = map[string]any{
				"status":        "healthy",
				"response_time": time.Since(redisStart).String(),
			}
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) ping(c echo.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()
	return fn(ctx)
}

func (h *HealthHandler) recordHealthError(check string, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":    check,
		"operation":     "health_check",
		"error_type":    check + "_unhealthy",
		"error_message": err.Error(),
	})
}
