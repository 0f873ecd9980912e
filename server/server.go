// Package server exposes signalist over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/digest"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// News selects news. *signalist.Aggregator implements it.
type News interface {
	GetNews(ctx context.Context, symbols ...string) ([]signalist.NewsArticle, error)
}

// Stocks searches symbols and quotes them. *finnhub.Client implements it.
type Stocks interface {
	SearchStocks(ctx context.Context, query string) ([]signalist.Stock, error)
	Quote(ctx context.Context, symbol string) (signalist.Quote, error)
}

// Watchlist stores the watchlists. *watchlist.Store implements it.
type Watchlist interface {
	UserByEmail(ctx context.Context, email string) (signalist.User, error)
	Add(ctx context.Context, userID, symbol, company string) (signalist.WatchlistItem, error)
	Remove(ctx context.Context, userID, symbol string) (bool, error)
	List(ctx context.Context, userID string) ([]signalist.WatchlistItem, error)
	SymbolsByEmail(ctx context.Context, email string) []string
}

// Events runs the jobs triggered by events. *digest.Job implements it.
type Events interface {
	Handle(ctx context.Context, e digest.Event) error
}

// Config holds the services exposed by the Server. A nil Watchlist or Events
// disables the matching routes.
type Config struct {
	News      News
	Stocks    Stocks
	Watchlist Watchlist
	Events    Events
	Logger    *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	cfg  Config
	echo *echo.Echo
	log  *slog.Logger
}

// inputValidator plugs go-playground/validator into echo.
type inputValidator struct {
	v *validator.Validate
}

func newInputValidator() *inputValidator {
	v := validator.New()
	// Use JSON field names in validation error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &inputValidator{v: v}
}

func (iv *inputValidator) Validate(i any) error {
	if err := iv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// New returns the Server for cfg.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newInputValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				log.DebugContext(ctx, "request completed",
					"method", v.Method, "uri", v.URI, "status", v.Status,
					"request_id", v.RequestID, "latency_ms", v.Latency.Milliseconds())
			} else {
				log.ErrorContext(ctx, "request failed",
					"method", v.Method, "uri", v.URI, "status", v.Status,
					"request_id", v.RequestID, "latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{cfg: cfg, echo: e, log: log}
	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/news", s.news)
	api.GET("/search", s.search)
	api.GET("/quote/:symbol", s.quote)
	if cfg.Watchlist != nil {
		api.GET("/watchlist", s.listWatchlist)
		api.POST("/watchlist", s.addToWatchlist)
		api.DELETE("/watchlist", s.removeFromWatchlist)
	}
	if cfg.Events != nil {
		api.POST("/events", s.event)
	}
	return s
}

// Handler returns the http.Handler of the API.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("starting server", "address", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// providerError maps a provider failure to an HTTP error.
func providerError(err error) error {
	if signalist.IsConfigurationError(err) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "news provider is not configured").SetInternal(err)
	}
	var herr *signalist.HTTPError
	if errors.As(err, &herr) && herr.StatusCode == http.StatusTooManyRequests {
		return echo.NewHTTPError(http.StatusTooManyRequests, "provider rate limit reached").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
}
