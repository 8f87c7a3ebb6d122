package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/observability"
	"github.com/tankharsh/photocap/internal/services"
	"github.com/tankharsh/photocap/internal/telemetry"
	"github.com/tankharsh/photocap/internal/validation"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// serverDeps is everything newServer wires into routes.
type serverDeps struct {
	log     *slog.Logger
	codec   *middleware.TokenCodec
	metrics *observability.Metrics
	limiter *middleware.RateLimiter
	db      Pinger

	adminAuth   *services.AdminAuthService
	studioAuth  *services.StudioAuthService
	studioUsers *services.StudioUserService
	verify      *services.EmailVerificationService
	events      *services.EventService
	clients     *services.ClientService

	corsOrigins []string
	secure      bool
	tracing     bool
}

func newServer(d serverDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = httpErrorHandler(d.log)

	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.corsOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if d.tracing {
		e.Use(otelecho.Middleware(telemetry.ServiceName))
		e.Use(middleware.OTelStatus())
	}
	e.Use(requestLogger(d.log))
	if d.metrics != nil {
		e.Use(d.metrics.Middleware())
		e.GET("/metrics", d.metrics.Handler())
	}

	e.GET("/healthz", healthHandler(d.db))

	limit := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if d.limiter != nil {
		limit = d.limiter.Middleware()
	}

	api := e.Group("/api")

	adminGate := middleware.Session(middleware.SessionConfig{
		Tenant:     model.TenantAdmin,
		CookieName: middleware.AdminCookieName,
		Secure:     d.secure,
		Logger:     d.log,
	}, d.codec, d.adminAuth)
	registerAdminRoutes(api, &adminHandler{
		auth:        d.adminAuth,
		studioUsers: d.studioUsers,
		secure:      d.secure,
		log:         d.log,
	}, adminGate, limit)

	studioGate := middleware.Session(middleware.SessionConfig{
		Tenant:     model.TenantStudio,
		CookieName: middleware.StudioCookieName,
		Secure:     d.secure,
		Logger:     d.log,
	}, d.codec, d.studioAuth)
	registerStudioRoutes(api, &studioHandler{
		auth:   d.studioAuth,
		verify: d.verify,
		secure: d.secure,
		log:    d.log,
	}, &eventHandler{events: d.events}, &clientHandler{clients: d.clients}, studioGate, limit)

	return e
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/healthz" || p == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				log.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				log.WarnContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	})
}

func healthHandler(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
