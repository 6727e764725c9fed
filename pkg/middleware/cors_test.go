package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func serveCORS(h http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/listing/brands", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	h := corsHandler(CORSConfig{AllowedOrigins: []string{"*"}})

	rr := serveCORS(h, http.MethodGet, "https://anywhere.example")

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	h := corsHandler(CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})

	rr := serveCORS(h, http.MethodGet, "https://shop.example")

	assert.Equal(t, "https://shop.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_ListedOrigin(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{"https://shop.example", "https://admin.shop.example/"}))

	for _, origin := range []string{"https://shop.example", "https://admin.shop.example"} {
		rr := serveCORS(h, http.MethodGet, origin)
		assert.Equal(t, origin, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	}
}

func TestCORS_UnlistedOrigin(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{"https://shop.example"}))

	rr := serveCORS(h, http.MethodGet, "https://evil.example")

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_NoOrigin(t *testing.T) {
	h := corsHandler(DefaultCORSConfig([]string{"*"}))

	rr := serveCORS(h, http.MethodGet, "")

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightReturns204(t *testing.T) {
	called := false
	h := CORS(DefaultCORSConfig([]string{"https://shop.example"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := serveCORS(h, http.MethodOptions, "https://shop.example")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, called)
}

func TestCORS_Defaults(t *testing.T) {
	h := corsHandler(CORSConfig{AllowedOrigins: []string{"https://shop.example"}})

	rr := serveCORS(h, http.MethodGet, "https://shop.example")

	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-Storefront-Token")
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rr.Header().Get("Access-Control-Expose-Headers"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"https://shop.example"})

	assert.Equal(t, []string{"X-Correlation-ID"}, cfg.ExposedHeaders)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 3600, cfg.MaxAge)
}
