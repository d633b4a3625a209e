package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:8888"

func newTestHandler(repo shortener.Repository, events *recorder, stats *mockStats) *handlers.LinkHandler {
	registry := shortener.NewRegistry(repo, shortener.NewHashGenerator(6), zap.NewNop())

	return handlers.NewLinkHandler(registry, stats, testBaseURL+"/", events.publishers(), zap.NewNop())
}

func createRequest(url string) *handlers.CreateShortURLRequest {
	req := &handlers.CreateShortURLRequest{}
	req.Body.URL = url

	return req
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var se huma.StatusError

	require.ErrorAs(t, err, &se)

	return se.GetStatus()
}

func TestLinkHandler_Root(t *testing.T) {
	handler := newTestHandler(store.NewMemoryStore(), &recorder{}, &mockStats{})

	resp, err := handler.Root(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "ShortLink API is running", resp.Body.Message)
}

func TestLinkHandler_CreateShortURL(t *testing.T) {
	t.Run("creates a short url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), &recorder{}, &mockStats{})

		resp, err := handler.CreateShortURL(context.Background(), createRequest("https://example.com/a"))

		require.NoError(t, err)
		assert.Equal(t, "eiFqkG", resp.Body.Code)
		assert.Equal(t, "http://localhost:8888/eiFqkG", resp.Body.ShortURL)
		assert.Equal(t, "https://example.com/a", resp.Body.OriginalURL)
		assert.Equal(t, resp.Body.ShortURL, resp.Location)
	})

	t.Run("returns the same code for the same url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), &recorder{}, &mockStats{})

		first, err1 := handler.CreateShortURL(context.Background(), createRequest("https://example.com/a"))
		second, err2 := handler.CreateShortURL(context.Background(), createRequest("HTTPS://Example.com/a/"))

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, first.Body.ShortURL, second.Body.ShortURL)
		assert.Equal(t, "https://example.com/a", second.Body.OriginalURL)
	})

	t.Run("rejects invalid urls with 422", func(t *testing.T) {
		events := &recorder{}
		handler := newTestHandler(store.NewMemoryStore(), events, &mockStats{})

		resp, err := handler.CreateShortURL(context.Background(), createRequest("ftp://example.com"))

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
		assert.Empty(t, events.created)
	})

	t.Run("maps store failures to 500", func(t *testing.T) {
		handler := newTestHandler(brokenStore{}, &recorder{}, &mockStats{})

		resp, err := handler.CreateShortURL(context.Background(), createRequest("https://example.com"))

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})

	t.Run("publishes a created event with request info", func(t *testing.T) {
		events := &recorder{}
		handler := newTestHandler(store.NewMemoryStore(), events, &mockStats{})
		ctx := middleware.WithRequestInfo(context.Background(), middleware.RequestInfo{
			RequestID: "req-1",
			ClientIP:  "203.0.113.7",
			UserAgent: "TestAgent/1.0",
		})

		_, err := handler.CreateShortURL(ctx, createRequest("https://example.com/a"))

		require.NoError(t, err)
		require.Len(t, events.created, 1)
		assert.Equal(t, "eiFqkG", events.created[0].Code)
		assert.Equal(t, "req-1", events.created[0].RequestID)
		assert.Equal(t, "203.0.113.7", events.created[0].ClientIP)
		assert.False(t, events.created[0].CreatedAt.IsZero())
	})

	t.Run("succeeds when publishing fails", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), &recorder{err: errMock}, &mockStats{})

		resp, err := handler.CreateShortURL(context.Background(), createRequest("https://example.com/a"))

		require.NoError(t, err)
		assert.Equal(t, "eiFqkG", resp.Body.Code)
	})
}

func TestLinkHandler_RedirectToURL(t *testing.T) {
	t.Run("redirects with 302", func(t *testing.T) {
		events := &recorder{}
		handler := newTestHandler(store.NewMemoryStore(), events, &mockStats{})
		created, err := handler.CreateShortURL(context.Background(), createRequest("https://example.com/a"))
		require.NoError(t, err)

		ctx := middleware.WithRequestInfo(context.Background(), middleware.RequestInfo{Referrer: "https://news.example"})
		resp, err := handler.RedirectToURL(ctx, &handlers.RedirectRequest{Code: created.Body.Code})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
		assert.Equal(t, "https://example.com/a", resp.Location)
		require.Len(t, events.resolved, 1)
		assert.Equal(t, "eiFqkG", events.resolved[0].Code)
		assert.Equal(t, "https://news.example", events.resolved[0].Referrer)
		assert.WithinDuration(t, time.Now(), events.resolved[0].ResolvedAt, time.Minute)
	})

	t.Run("returns 404 for unknown codes", func(t *testing.T) {
		events := &recorder{}
		handler := newTestHandler(store.NewMemoryStore(), events, &mockStats{})

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "nope"})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
		assert.Empty(t, events.resolved)
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		handler := newTestHandler(brokenStore{}, &recorder{}, &mockStats{})

		_, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc"})

		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})

	t.Run("redirects when publishing fails", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		require.NoError(t, memStore.Insert(context.Background(), &shortener.Link{
			Code:        "abc123",
			OriginalURL: "https://example.com",
			CreatedAt:   time.Now(),
		}))

		handler := newTestHandler(memStore, &recorder{err: errMock}, &mockStats{})

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc123"})

		require.NoError(t, err)
		assert.Equal(t, "https://example.com", resp.Location)
	})
}

func TestLinkHandler_GetLink(t *testing.T) {
	createdAt := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	seeded := func(t *testing.T) *store.MemoryStore {
		t.Helper()

		memStore := store.NewMemoryStore()
		require.NoError(t, memStore.Insert(context.Background(), &shortener.Link{
			Code:        "abc123",
			OriginalURL: "https://example.com",
			CreatedAt:   createdAt,
		}))

		return memStore
	}

	t.Run("describes the link with clicks", func(t *testing.T) {
		handler := newTestHandler(seeded(t), &recorder{}, &mockStats{clicks: 7})

		resp, err := handler.GetLink(context.Background(), &handlers.GetLinkRequest{Code: "abc123"})

		require.NoError(t, err)
		assert.Equal(t, "abc123", resp.Body.Code)
		assert.Equal(t, "http://localhost:8888/abc123", resp.Body.ShortURL)
		assert.Equal(t, "https://example.com", resp.Body.OriginalURL)
		assert.Equal(t, createdAt, resp.Body.CreatedAt)
		assert.Equal(t, int64(7), resp.Body.Clicks)
	})

	t.Run("reports zero clicks when stats are unavailable", func(t *testing.T) {
		handler := newTestHandler(seeded(t), &recorder{}, &mockStats{clicks: 3, err: errMock})

		resp, err := handler.GetLink(context.Background(), &handlers.GetLinkRequest{Code: "abc123"})

		require.NoError(t, err)
		assert.Zero(t, resp.Body.Clicks)
	})

	t.Run("returns 404 for unknown codes", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore(), &recorder{}, &mockStats{})

		_, err := handler.GetLink(context.Background(), &handlers.GetLinkRequest{Code: "nope"})

		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})
}
