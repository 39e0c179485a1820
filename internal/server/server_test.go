package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/diagnosis"
	domainErrors "github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/models"
	"github.com/thomas-vilte/contextclue/internal/services"
)

var canned = models.DiagnosisResult{
	BugLocation: "Line 18 in Card.tsx",
	Confidence:  87,
	Suggestion:  "s",
	Fix:         "f",
	Before:      "a",
	After:       "b",
}

type analyzerFunc func(ctx context.Context, req models.AnalysisRequest) (*models.Analysis, error)

func (f analyzerFunc) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.Analysis, error) {
	return f(ctx, req)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, AnalyzePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAnalyze_ReturnsBareResult(t *testing.T) {
	// Arrange
	var got models.AnalysisRequest
	srv := New(analyzerFunc(func(_ context.Context, req models.AnalysisRequest) (*models.Analysis, error) {
		got = req
		return &models.Analysis{Result: canned, Source: models.SourceLive, Provider: "bedrock"}, nil
	}), Options{})

	// Act
	rec := post(t, srv.Handler(), `{"screenshotName":"bug.png","codeName":"Card.tsx","codeContent":"<div/>"}`)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live", rec.Header().Get(HeaderAnalysisSource))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, models.AnalysisRequest{ScreenshotName: "bug.png", CodeName: "Card.tsx", CodeContent: "<div/>"}, got)

	body := decodeResult(t, rec)
	assert.Len(t, body, 6, "provenance must not leak into the body")
	assert.Equal(t, "Line 18 in Card.tsx", body["bugLocation"])
	assert.Equal(t, float64(87), body["confidence"])
}

func TestAnalyze_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "hello"},
		{name: "empty", body: ""},
		{name: "wrong field type", body: `{"codeContent": 42}`},
		{name: "truncated", body: `{"codeName":"a.tsx"`},
		{name: "null", body: `null`},
		{name: "array", body: `[]`},
		{name: "second value", body: `{"codeContent":"x"}{`},
		{name: "trailing garbage", body: `{"codeContent":"x"} trailing garbage`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			called := false
			srv := New(analyzerFunc(func(context.Context, models.AnalysisRequest) (*models.Analysis, error) {
				called = true
				return nil, nil
			}), Options{})

			// Act
			rec := post(t, srv.Handler(), tt.body)

			// Assert
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
			assert.False(t, called)
		})
	}
}

func TestAnalyze_AnalyzerError(t *testing.T) {
	srv := New(analyzerFunc(func(context.Context, models.AnalysisRequest) (*models.Analysis, error) {
		return nil, context.Canceled
	}), Options{})

	rec := post(t, srv.Handler(), `{}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestAnalyze_PanicIsRecovered(t *testing.T) {
	srv := New(analyzerFunc(func(context.Context, models.AnalysisRequest) (*models.Analysis, error) {
		panic("boom")
	}), Options{})

	rec := post(t, srv.Handler(), `{}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestAnalyze_BodyLimit(t *testing.T) {
	srv := New(analyzerFunc(func(context.Context, models.AnalysisRequest) (*models.Analysis, error) {
		return &models.Analysis{Result: canned, Source: models.SourceFallback}, nil
	}), Options{BodyLimit: "1K"})

	rec := post(t, srv.Handler(), `{"codeContent":"`+strings.Repeat("x", 4096)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := New(analyzerFunc(nil), Options{})
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	srv := New(analyzerFunc(nil), Options{})
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

// End to end through the real orchestrator.
func TestAnalyze_Scenarios(t *testing.T) {
	live := `{"bugLocation":"Line 3","confidence":80,"suggestion":"x","fix":"y","before":"a","after":"b"}`

	t.Run("credentials absent", func(t *testing.T) {
		srv := New(services.NewAnalysisService(services.Config{}), Options{})

		rec := post(t, srv.Handler(), `{"codeName":"Header.tsx","codeContent":"<header/>"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fallback", rec.Header().Get(HeaderAnalysisSource))
		var result models.DiagnosisResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, diagnosis.NewCatalog().Contains(result))
	})

	t.Run("provider network failure", func(t *testing.T) {
		provider := &ai.MockInferenceProvider{}
		provider.On("GetProviderName").Return("bedrock").Maybe()
		provider.On("GetModelName").Return("amazon.nova-lite-v1:0").Maybe()
		provider.On("Invoke", mock.Anything, mock.Anything).
			Return("", nil, domainErrors.ErrProviderCall.WithError(errors.New("network unreachable")))
		svc := services.NewAnalysisService(services.Config{},
			services.WithProvider(provider),
			services.WithFallback(diagnosis.NewSequence(canned)))
		srv := New(svc, Options{})

		rec := post(t, srv.Handler(), `{"codeContent":"<div/>"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fallback", rec.Header().Get(HeaderAnalysisSource))
		var result models.DiagnosisResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, canned, result)
	})

	t.Run("live passthrough", func(t *testing.T) {
		provider := &ai.MockInferenceProvider{}
		provider.On("GetProviderName").Return("bedrock").Maybe()
		provider.On("GetModelName").Return("amazon.nova-lite-v1:0").Maybe()
		provider.On("Invoke", mock.Anything, mock.Anything).Return(live, nil, nil)
		srv := New(services.NewAnalysisService(services.Config{}, services.WithProvider(provider)), Options{})

		rec := post(t, srv.Handler(), `{"codeContent":"<div/>"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "live", rec.Header().Get(HeaderAnalysisSource))
		assert.JSONEq(t, live, rec.Body.String())
	})
}

func TestServer_StartAndShutdown(t *testing.T) {
	// Arrange
	srv := New(services.NewAnalysisService(services.Config{}), Options{})
	done := make(chan error, 1)

	// Act
	go func() { done <- srv.Start("127.0.0.1:0") }()
	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr().String() + HealthPath)
	require.NoError(t, err)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// Assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, <-done, "a clean shutdown is not an error")
}
