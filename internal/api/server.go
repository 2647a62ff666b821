package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"namegen/internal/config"
	"namegen/internal/engine"
	"namegen/internal/models"
)

// NewServer builds the echo instance with middleware and routes registered.
// The table must be fully loaded; handlers never see a partial table.
func NewServer(cfg *config.Config, table *engine.NameTable, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// zap does the logging; keep echo's own logger quiet
	e.Logger.SetLevel(log.OFF)
	e.JSONSerializer = JSONSerializer{}
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	NewHandler(table, logger).RegisterRoutes(e)
	return e
}

// errorHandler renders every error as {"detail": "..."}.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		detail := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			detail = fmt.Sprint(he.Message)
		} else {
			logger.Error("unhandled error",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, models.ErrorResponse{Detail: detail})
		}
		if err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}
