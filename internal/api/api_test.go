package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiesa2k/testeagent/internal/api/middleware"
	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/service"
	"github.com/chiesa2k/testeagent/internal/tools"
)

type fixedRepo struct{}

func (fixedRepo) Scalar(ctx context.Context, stmt query.Statement) (decimal.Decimal, error) {
	return decimal.NewFromInt(10), nil
}

func (fixedRepo) Series(ctx context.Context, stmt query.Statement) ([]domain.SeriesPoint, error) {
	return []domain.SeriesPoint{}, nil
}

func (fixedRepo) Table(ctx context.Context, stmt query.Statement, maxRows int) (*domain.Table, error) {
	return &domain.Table{}, nil
}

type reportFunc func(ctx context.Context, today time.Time) string

func (f reportFunc) Build(ctx context.Context, today time.Time) string { return f(ctx, today) }

func newTestRouter(t *testing.T, report tools.ReportBuilder) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	registry := tools.NewRegistry(tools.Deps{
		Metrics: service.NewMetricService(fixedRepo{}, query.NewBuilder(query.SQLite)),
		Report:  report,
		Observe: tools.NewMetrics(reg),
	})
	return NewRouter(&Services{Tools: registry, Metrics: reg}, []string{"*"}), reg
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestListTools(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodGet, "/api/v1/tools", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Tools []tools.Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Tools, 24)
	assert.Equal(t, tools.CapabilitiesTool, body.Tools[0].Name)
}

func TestInvokeTool(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodPost, "/api/v1/tools/get_total_sales_for_year", `{"year": 2024, "regime": "offshore"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tool":"get_total_sales_for_year","output":"O total de vendas Offshore para 2024 foi R$ 10,00","html":false}`, w.Body.String())
}

func TestInvokeToolWithoutBody(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodPost, "/api/v1/tools/get_pending_bms_total", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "O número total de BMs pendentes é: 10")
}

func TestInvokeToolErrors(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodPost, "/api/v1/tools/get_profit", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"unknown tool: get_profit"}`, w.Body.String())

	w = serve(router, http.MethodPost, "/api/v1/tools/get_total_sales_for_year", `{"year": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")

	w = serve(router, http.MethodPost, "/api/v1/tools/get_total_sales_for_year", `{"year": true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	html := reportFunc(func(ctx context.Context, today time.Time) string {
		return "<!DOCTYPE html><html><body>ok</body></html>"
	})
	router, _ := newTestRouter(t, html)

	w := serve(router, http.MethodGet, "/api/v1/reports/ytd", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<!DOCTYPE html><html><body>ok</body></html>", w.Body.String())

	w = serve(router, http.MethodPost, "/api/v1/tools/"+tools.ReportTool, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"html":true`)
}

func TestReportEndpointPlainText(t *testing.T) {
	apology := reportFunc(func(ctx context.Context, today time.Time) string {
		return "Desculpe, ocorreu um erro inesperado ao gerar o relatório: boom"
	})
	router, _ := newTestRouter(t, apology)

	w := serve(router, http.MethodGet, "/api/v1/reports/ytd", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "boom")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	serve(router, http.MethodPost, "/api/v1/tools/"+tools.CapabilitiesTool, "")

	w := serve(router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `marina_tool_invocations_total{outcome="ok",tool="get_agent_capabilities"} 1`)
	assert.Contains(t, w.Body.String(), `marina_http_requests_total{code="200",route="/api/v1/tools/:name"} 1`)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)
	assert.False(t, all)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
