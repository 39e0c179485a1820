// Package server exposes the analysis service over HTTP.
package server

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/thomas-vilte/contextclue/internal/models"
)

const (
	AnalyzePath = "/api/analyze"
	HealthPath  = "/healthz"

	// HeaderAnalysisSource tells clients whether the body is a live or a fallback diagnosis.
	HeaderAnalysisSource = "X-Analysis-Source"

	defaultBodyLimit = "2M"
)

// Analyzer is the capability the HTTP layer needs from the orchestrator.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.Analysis, error)
}

type Options struct {
	// BodyLimit uses echo's size syntax, e.g. "2M". Empty means 2M.
	BodyLimit string
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	echo     *echo.Echo
	analyzer Analyzer
}

func New(analyzer Analyzer, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	s := &Server{echo: e, analyzer: analyzer}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(contextLogger)
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))

	e.POST(AnalyzePath, s.analyze)
	e.GET(HealthPath, health)

	return s
}

// Handler returns the http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on addr until Shutdown. A clean shutdown returns nil.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address once Start is listening, nil before.
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) analyze(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	req, err := decodeRequest(c.Request().Body)
	if err != nil {
		return err
	}

	log.Debug("analysis requested",
		"code_name", req.CodeName,
		"screenshot_name", req.ScreenshotName,
		"code_length", len(req.CodeContent))

	analysis, err := s.analyzer.Analyze(ctx, *req)
	if err != nil {
		return err
	}

	c.Response().Header().Set(HeaderAnalysisSource, string(analysis.Source))
	return c.JSON(http.StatusOK, analysis.Result)
}

// decodeRequest accepts exactly one JSON object. Trailing data and a bare
// null are rejected.
func decodeRequest(body io.Reader) (*models.AnalysisRequest, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.ErrInvalidRequest.WithError(err)
	}

	var req *models.AnalysisRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.ErrInvalidRequest.WithError(err)
	}
	if req == nil {
		return nil, errors.ErrInvalidRequest.WithContext("reason", "body is null")
	}
	return req, nil
}

func health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// handleError keeps the generic 500 body for every failure that is not an
// echo routing or size error; internal detail only goes to the log.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) && httpErr.Code != http.StatusInternalServerError {
		code = httpErr.Code
	}

	if code == http.StatusInternalServerError {
		logger.Error(c.Request().Context(), "request failed", err,
			"path", c.Request().URL.Path)
	}

	var respErr error
	if c.Request().Method == http.MethodHead {
		respErr = c.NoContent(code)
	} else {
		respErr = c.JSON(code, errorResponse{Error: http.StatusText(code)})
	}
	if respErr != nil {
		logger.Error(c.Request().Context(), "failed to write error response", respErr)
	}
}

func contextLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		ctx := logger.With(c.Request().Context(), "request_id", id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info(c.Request().Context(), "request handled",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Round(time.Millisecond).Milliseconds(),
				"source", c.Response().Header().Get(HeaderAnalysisSource))
			return nil
		},
	})
}
