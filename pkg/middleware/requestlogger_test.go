package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/logger"
)

func newTestLogger(w *bytes.Buffer) *slog.Logger {
	return logger.NewWithWriter("storefront", "debug", w)
}

// lastLogLine decodes the final JSON line written to buf.
func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &out))
	return out
}

func logInHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handler log")
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestLogger_StoresLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	RequestLogger(newTestLogger(&buf))(logInHandler()).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	out := lastLogLine(t, &buf)
	assert.Equal(t, "handler log", out["msg"])
	assert.Equal(t, "storefront", out["service"])
}

func TestRequestLogger_IncludesCorrelationAndSession(t *testing.T) {
	var buf bytes.Buffer

	ctx := logger.WithCorrelationID(context.Background(), "corr-test-123")
	ctx = logger.WithSessionID(ctx, "sess-42")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	RequestLogger(newTestLogger(&buf))(logInHandler()).ServeHTTP(httptest.NewRecorder(), req)

	out := lastLogLine(t, &buf)
	assert.Equal(t, "corr-test-123", out["correlation_id"])
	assert.Equal(t, "sess-42", out["session_id"])
}

func TestRequestLogger_IncludesTraceFields(t *testing.T) {
	var buf bytes.Buffer

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	RequestLogger(newTestLogger(&buf))(logInHandler()).ServeHTTP(httptest.NewRecorder(), req)

	out := lastLogLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestRequestLogger_NoSession_OmitsField(t *testing.T) {
	var buf bytes.Buffer
	RequestLogger(newTestLogger(&buf))(logInHandler()).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotContains(t, lastLogLine(t, &buf), "session_id")
}

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	h := RequestLogging(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/listing/brands", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Correlation-ID"))

	out := lastLogLine(t, &buf)
	assert.Equal(t, "http request", out["msg"])
	assert.Equal(t, seen, out["correlation_id"])
	assert.Equal(t, float64(http.StatusOK), out["status"])
}

func TestRequestLogging_HonoursIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogging(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "edge-7")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "edge-7", rr.Header().Get("X-Correlation-ID"))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelError, levelFor("/api/v1/listing/brands", http.StatusServiceUnavailable))
	assert.Equal(t, slog.LevelWarn, levelFor("/api/v1/listing/more", http.StatusForbidden))
	assert.Equal(t, slog.LevelDebug, levelFor("/health/live", http.StatusOK))
	assert.Equal(t, slog.LevelDebug, levelFor("/metrics", http.StatusOK))
	assert.Equal(t, slog.LevelInfo, levelFor("/storefront/section", http.StatusOK))
}
