package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/useraccounts/account-api/internal/api/handler"
	"github.com/useraccounts/account-api/internal/api/middleware"
	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
	"github.com/useraccounts/account-api/internal/infrastructure/http/handlers"
)

// RouterConfig lists what NewRouter wires into the Echo instance.
type RouterConfig struct {
	Accounts  ports.AccountService
	Tokens    ports.TokenService
	Checks    []handlers.Check
	StaticDir string
	Log       zerolog.Logger

	// Registerer receives the HTTP request metrics. Nil means the default
	// prometheus registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "account_api",
		Registerer: cfg.Registerer,
	}))

	// --- Account routes ---
	accounts := handler.NewAccountHandler(cfg.Accounts)
	session := middleware.Auth(cfg.Tokens, domain.PurposeSession)
	reset := middleware.Auth(cfg.Tokens, domain.PurposePasswordReset)
	userOnly := middleware.RBAC(domain.RoleUser)

	user := e.Group("/api/user")
	user.POST("/register", accounts.Register)
	user.POST("/login", accounts.Login)
	user.POST("/forgot-password", accounts.ForgotPassword)
	user.POST("/verifyCode", accounts.VerifyCode)
	user.POST("/reset-password", accounts.ResetPassword, reset)
	user.PUT("/edit", accounts.Edit, session, userOnly)
	user.DELETE("/delete", accounts.Delete, session, userOnly)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(cfg.Checks...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			if id, ok := c.Get(middleware.ContextAccountID).(string); ok {
				event = event.Str("account_id", id)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
