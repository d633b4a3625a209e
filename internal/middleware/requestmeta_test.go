package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/stretchr/testify/assert"
)

type testOutput struct {
	Body string `json:"body"`
}

func serveWithMeta(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, middleware.RequestInfo) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api, func() string { return "generated-id" }))

	var info middleware.RequestInfo

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		info = middleware.RequestInfoFrom(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w, info
}

func TestRequestMeta(t *testing.T) {
	t.Run("captures user-agent and referrer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		req.Header.Set("Referer", "https://example.com")

		w, info := serveWithMeta(t, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "TestAgent/1.0", info.UserAgent)
		assert.Equal(t, "https://example.com", info.Referrer)
	})

	t.Run("takes the first X-Forwarded-For address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1, 172.16.0.1")

		_, info := serveWithMeta(t, req)

		assert.Equal(t, "192.168.1.1", info.ClientIP)
	})

	t.Run("uses X-Real-IP without X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")

		_, info := serveWithMeta(t, req)

		assert.Equal(t, "10.0.0.1", info.ClientIP)
	})

	t.Run("falls back to the peer address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "203.0.113.7:4321"

		_, info := serveWithMeta(t, req)

		assert.Equal(t, "203.0.113.7", info.ClientIP)
	})

	t.Run("generates a request id", func(t *testing.T) {
		w, info := serveWithMeta(t, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "generated-id", info.RequestID)
		assert.Equal(t, "generated-id", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("keeps an incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc123")

		w, info := serveWithMeta(t, req)

		assert.Equal(t, "abc123", info.RequestID)
		assert.Equal(t, "abc123", w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestRequestInfoFrom_Empty(t *testing.T) {
	assert.Equal(t, middleware.RequestInfo{}, middleware.RequestInfoFrom(context.Background()))
}
