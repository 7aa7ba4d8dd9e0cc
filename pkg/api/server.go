// Package api exposes the affirmation engine over a local HTTP API,
// intended for a web frontend running on the same device.
package api

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/uplift-labs/uplift/pkg/affirmations"
	"github.com/uplift-labs/uplift/pkg/kvstore"
)

// requestValidator adapts go-playground/validator to echo's Validator.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(400, err.Error())
	}
	return nil
}

// Server wires the engine and stores into an echo instance.
type Server struct {
	echo     *echo.Echo
	log      *zap.Logger
	service  *affirmations.Service
	settings *affirmations.SettingsStore
	activity *affirmations.ActivityStore
	kv       *kvstore.Store
}

// NewServer builds the HTTP server and registers all routes. logger may
// be nil.
func NewServer(service *affirmations.Service, settings *affirmations.SettingsStore, activity *affirmations.ActivityStore, kv *kvstore.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	s := &Server{
		echo:     e,
		log:      logger,
		service:  service,
		settings: settings,
		activity: activity,
		kv:       kv,
	}
	s.registerRoutes()
	return s
}

// requestLogger logs each request with zap at debug level.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogMethod: true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	})
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.Health)

	g := s.echo.Group("/api/v1")

	g.GET("/affirmations", s.ListAffirmations)
	g.GET("/affirmations/random", s.RandomAffirmation)
	g.GET("/affirmations/recommended", s.RecommendedAffirmation)
	g.GET("/affirmations/daily", s.DailySpecial)
	g.GET("/affirmations/stats", s.Stats)
	g.GET("/affirmations/:id", s.GetAffirmation)
	g.POST("/affirmations", s.CreateAffirmation)
	g.DELETE("/affirmations/:id", s.DeleteAffirmation)

	g.GET("/settings", s.GetSettings)
	g.PATCH("/settings", s.UpdateSettings)

	g.PUT("/favorites/:id", s.AddFavorite)
	g.DELETE("/favorites/:id", s.RemoveFavorite)
	g.POST("/likes/:id", s.ToggleLike)
	g.GET("/preferences", s.Preferences)

	g.GET("/export", s.ExportData)
	g.POST("/reset", s.ResetData)
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying echo instance, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
