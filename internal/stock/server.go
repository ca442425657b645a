package stock

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// QuoteSource is what the server reads quotes from.
type QuoteSource interface {
	Get(ctx context.Context, code string) (Quote, error)
	Ping(ctx context.Context) error
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AccessLog    bool
}

// Server exposes stored quotes over HTTP.
type Server struct {
	app    *fiber.App
	quotes QuoteSource
	log    *zap.Logger
}

// NewServer wires routes and middleware.
func NewServer(quotes QuoteSource, cfg ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			AppName:      "euromap stock",
		}),
		quotes: quotes,
		log:    log,
	}

	// ============================================================
	// Global Middleware
	// ============================================================

	s.app.Use(recover.New())
	if cfg.AccessLog {
		s.app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
	}))

	// ============================================================
	// Routes
	// ============================================================

	s.app.Get("/health/live", s.live)
	s.app.Get("/health/ready", s.ready)
	s.app.Get("/api/country/:code/stock", s.getStock)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("stock server listening", zap.String("addr", addr))
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

func (s *Server) ready(c fiber.Ctx) error {
	if err := s.quotes.Ping(c.Context()); err != nil {
		s.log.Warn("readiness check failed", zap.Error(err))
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func (s *Server) getStock(c fiber.Ctx) error {
	code := normalizeCode(c.Params("code"))
	if len(code) != 2 {
		return c.Status(http.StatusBadRequest).JSON(Quote{Status: "error", Error: "invalid country code"})
	}

	q, err := s.quotes.Get(c.Context(), code)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(Quote{Status: "not_found", Error: "no stock data for " + code})
	case err != nil:
		s.log.Error("stock lookup failed", zap.String("code", code), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(Quote{Status: "error", Error: "internal error"})
	}
	q.Status = StatusOK
	return c.JSON(q)
}
