package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Insert(t *testing.T) {
	t.Run("inserts link and assigns id", func(t *testing.T) {
		s := store.NewMemoryStore()
		link := newLink("abc123", "https://example.com")

		err := s.Insert(context.Background(), link)

		require.NoError(t, err)
		assert.Equal(t, int64(1), link.ID)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newLink("abc123", "https://example.com"))

		err := s.Insert(context.Background(), newLink("abc123", "https://other.com"))

		require.ErrorIs(t, err, shortener.ErrConflict)

		got, _ := s.GetByCode(context.Background(), "abc123")
		assert.Equal(t, "https://example.com", got.OriginalURL)
	})

	t.Run("rejects duplicate url", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newLink("abc123", "https://example.com"))

		err := s.Insert(context.Background(), newLink("xyz789", "https://example.com"))

		require.ErrorIs(t, err, shortener.ErrConflict)

		_, err = s.GetByCode(context.Background(), "xyz789")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("only one concurrent insert of the same url wins", func(t *testing.T) {
		s := store.NewMemoryStore()

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			winners  int
			conflict int
		)

		for i := range 20 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				err := s.Insert(context.Background(), newLink("code"+string(rune('a'+i)), "https://example.com"))

				mu.Lock()
				defer mu.Unlock()

				if err == nil {
					winners++
				} else if assert.ErrorIs(t, err, shortener.ErrConflict) {
					conflict++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, winners)
		assert.Equal(t, 19, conflict)
	})
}

func TestMemoryStore_GetByCode(t *testing.T) {
	t.Run("returns link when found", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newLink("abc123", "https://example.com"))

		link, err := s.GetByCode(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.OriginalURL)
		assert.Equal(t, shortener.Code("abc123"), link.Code)
		assert.False(t, link.CreatedAt.IsZero())
	})

	t.Run("returns ErrNotFound when code does not exist", func(t *testing.T) {
		s := store.NewMemoryStore()

		link, err := s.GetByCode(context.Background(), "notfound")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("returned link is a copy", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newLink("abc123", "https://example.com"))

		link, _ := s.GetByCode(context.Background(), "abc123")
		link.OriginalURL = "https://mutated.com"

		again, _ := s.GetByCode(context.Background(), "abc123")
		assert.Equal(t, "https://example.com", again.OriginalURL)
	})
}

func TestMemoryStore_GetByURL(t *testing.T) {
	t.Run("returns link when found", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Insert(context.Background(), newLink("abc123", "https://example.com"))

		link, err := s.GetByURL(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("abc123"), link.Code)
	})

	t.Run("returns ErrNotFound when url does not exist", func(t *testing.T) {
		s := store.NewMemoryStore()

		link, err := s.GetByURL(context.Background(), "https://example.com")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
