package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"sitegen/internal/catalog"
	"sitegen/internal/clone"
	"sitegen/internal/config"
	"sitegen/internal/models"
	"sitegen/internal/transport"
)

// StreamOpener opens provider token streams. Implemented by
// transport.ClientRegistry; tests substitute an in-memory fake.
type StreamOpener interface {
	Stream(ctx context.Context, resolved catalog.Resolved, messages []models.Message) (transport.TokenStream, error)
}

const (
	maxBodyBytes        = 10 << 20 // generated artifacts round-trip through request bodies
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	idleTimeout         = 120 * time.Second
)

type Server struct {
	cfg     config.Config
	clients StreamOpener
	fetcher *clone.Fetcher
	app     *echo.Echo
	address string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.Config, clients StreamOpener) (*Server, error) {
	if clients == nil {
		return nil, errors.New("client registry must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))

	srv := &Server{
		cfg:     cfg,
		clients: clients,
		fetcher: clone.NewFetcher(nil),
		app:     e,
		address: fmt.Sprintf(":%d", cfg.Server.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the routed handler, chiefly for tests.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.cfg.Server.Port)
	slog.Info("starting server", "addr", s.address)

	httpServer := &http.Server{
		Addr:        s.address,
		Handler:     s.app,
		ReadTimeout: readTimeout,
		IdleTimeout: idleTimeout,
		// No WriteTimeout: generation streams stay open for the full
		// run of the upstream model; stream limits bound them instead.
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/api/health", s.handleHealth)
	s.app.GET("/api/models", s.handleModels)
	s.app.POST("/api/ask-ai", s.handleAskAI)
	s.app.POST("/api/parse-files", s.handleParseFiles)
	s.app.POST("/api/fetch-design", s.handleFetchDesign)
	s.app.POST("/api/push-to-hf", s.handlePushToHF)
	s.app.POST("/api/auto-deploy", s.handleAutoDeploy)

	if s.cfg.Server.StaticDir != "" {
		s.app.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  s.cfg.Server.StaticDir,
			HTML5: true,
		}))
	}
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: "request body is required",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
		}
	}
	return nil
}

type requestError struct {
	Status  int
	Message string
}

func (e requestError) Error() string {
	return e.Message
}

type apiError struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, apiError{OK: false, Message: message})
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		// Stream headers already went out; nothing sane to write.
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Message)
		return
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		_ = writeError(c, echoErr.Code, fmt.Sprintf("%v", echoErr.Message))
		return
	}

	_ = writeError(c, http.StatusInternalServerError, "internal server error")
}

func printStartupBanner(port int) {
	host := "127.0.0.1"
	fmt.Println()
	fmt.Println("sitegen ready")
	fmt.Printf("Listening on http://%s:%d\n", host, port)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /api/health")
	fmt.Println("  GET  /api/models")
	fmt.Println("  POST /api/ask-ai")
	fmt.Println("  POST /api/parse-files")
	fmt.Println("  POST /api/fetch-design")
	fmt.Println("Configure provider API keys via environment or .env (GROQ_API_KEY, OPENAI_API_KEY, DEEPSEEK_API_KEY, KIMI_API_KEY).")
	fmt.Printf("Example:\n  curl http://%s:%d/api/ask-ai -H 'Content-Type: application/json' -d '{\"prompt\":\"a landing page for a bakery\"}'\n\n", host, port)
}
