package httpapi

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/metrics"
	"browser-automator/internal/usecase"
	"browser-automator/pkg/apperr"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAutomation struct {
	mu       sync.Mutex
	env      *entity.ResultEnvelope
	requests []entity.AutomateRequest
}

func (f *fakeAutomation) Automate(_ context.Context, req entity.AutomateRequest) *entity.ResultEnvelope {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	return f.env
}

func newTestServer(t *testing.T, automation *fakeAutomation, limit float64, burst int) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	return NewServer(Params{
		Config: &config.Config{
			AppConfig:  &config.AppConfig{Debug: true},
			HTTPConfig: &config.HTTPConfig{Addr: "127.0.0.1:0", RateLimit: limit, RateBurst: burst},
		},
		Logger:  zap.NewNop(),
		Metrics: metrics.New(),
		Usecase: &usecase.Service{Automation: automation},
	})
}

func post(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/automate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())

	return rec, decoded
}

func TestAutomate_Success(t *testing.T) {
	automation := &fakeAutomation{env: &entity.ResultEnvelope{
		Success:       true,
		RequestID:     "req-1",
		Results:       []string{"🌐 Navigated to https://example.com (10ms)", "❌ Failed click: gone"},
		ScrapedData:   entity.ScrapedData{"title": {"Example"}},
		Summary:       "",
		ExecutionTime: 42,
	}}
	srv := newTestServer(t, automation, 100, 100)

	rec, body := post(t, srv, `{"prompt":"open example.com","forceGoogle":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-1", body["requestId"])
	assert.Len(t, body["results"], 2)
	assert.Equal(t, map[string]any{"title": []any{"Example"}}, body["scrapedData"])
	assert.Equal(t, "", body["summary"])
	assert.Equal(t, float64(42), body["executionTime"])
	assert.NotContains(t, body, "error")

	require.Len(t, automation.requests, 1)
	assert.Equal(t, entity.AutomateRequest{Prompt: "open example.com", ForceGoogle: true}, automation.requests[0])
}

func TestAutomate_StatusFollowsErrorCode(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		status int
	}{
		{name: "invalid argument", code: apperr.CodeInvalidArgument, status: http.StatusBadRequest},
		{name: "browser", code: apperr.CodeBrowserNotReady, status: http.StatusInternalServerError},
		{name: "plan", code: apperr.CodeInvalidPlan, status: http.StatusInternalServerError},
		{name: "internal", code: apperr.CodeInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			automation := &fakeAutomation{env: &entity.ResultEnvelope{
				Success: false,
				Results: []string{"❌ System Error: boom"},
				Error:   "boom",
				Code:    tt.code,
			}}
			srv := newTestServer(t, automation, 100, 100)

			rec, body := post(t, srv, `{"prompt":"x"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "boom", body["error"])
			assert.NotContains(t, body, "Code")
		})
	}
}

func TestAutomate_MalformedBody(t *testing.T) {
	automation := &fakeAutomation{}
	srv := newTestServer(t, automation, 100, 100)

	rec, body := post(t, srv, `{"prompt":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "invalid request body")
	assert.Empty(t, automation.requests)
}

func TestAutomate_RateLimited(t *testing.T) {
	automation := &fakeAutomation{env: &entity.ResultEnvelope{Success: true, Results: []string{}}}
	srv := newTestServer(t, automation, 0.001, 1)

	first, _ := post(t, srv, `{"prompt":"a"}`)
	second, body := post(t, srv, `{"prompt":"b"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate limit exceeded", body["error"])
	assert.Len(t, automation.requests, 1)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, &fakeAutomation{}, 100, 100)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `automator_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := newTestServer(t, &fakeAutomation{}, 100, 100)

	require.NoError(t, srv.Start(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
}
