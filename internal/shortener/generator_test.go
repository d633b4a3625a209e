package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
)

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func TestGenerate(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		tests := []struct {
			url    string
			length int
			want   string
		}{
			{"https://example.com/a", 6, "eiFqkG"},
			{"https://example.com/a", 8, "3VOIPhmX"},
			{"https://example.com/a", 1, "J"},
			{"https://a.com", 6, "nwzxCN"},
			{"https://b.com", 6, "157Eri"},
			{"https://example.com", 6, "50d8Vz"},
			{"", 6, "195wqw"},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.want, shortener.Generate(tt.url, tt.length), "url %q length %d", tt.url, tt.length)
		}
	})

	t.Run("same input produces same code", func(t *testing.T) {
		first := shortener.Generate("https://example.com/path", 6)
		second := shortener.Generate("https://example.com/path", 6)

		assert.Equal(t, first, second)
	})

	t.Run("different input produces different code", func(t *testing.T) {
		assert.NotEqual(t,
			shortener.Generate("https://example.com/path1", 6),
			shortener.Generate("https://example.com/path2", 6),
		)
	})

	t.Run("uses only base62 characters", func(t *testing.T) {
		for _, url := range []string{"https://example.com", "https://go.dev/doc", "x"} {
			for _, c := range shortener.Generate(url, 12) {
				assert.True(t, strings.ContainsRune(base62Alphabet, c), "unexpected character %q", c)
			}
		}
	})

	t.Run("length is capped by the digest", func(t *testing.T) {
		code := shortener.Generate("https://example.com/a", 40)

		assert.Equal(t, "aRqwDqr1TO8FBptzjrZZL6zzuzYql6QwyyEk4b9M", code)
		assert.Len(t, code, 40)
	})

	t.Run("never returns an empty code", func(t *testing.T) {
		assert.NotEmpty(t, shortener.Generate("", 1))
	})

	t.Run("non-positive length falls back to the default", func(t *testing.T) {
		assert.Equal(t, "eiFqkG", shortener.Generate("https://example.com/a", 0))
		assert.Equal(t, "eiFqkG", shortener.Generate("https://example.com/a", -3))
	})
}

func TestNewHashGenerator(t *testing.T) {
	t.Run("binds the configured length", func(t *testing.T) {
		generate := shortener.NewHashGenerator(8)

		assert.Equal(t, "3VOIPhmX", generate("https://example.com/a"))
	})

	t.Run("falls back to default length", func(t *testing.T) {
		generate := shortener.NewHashGenerator(0)

		assert.Equal(t, shortener.Generate("https://example.com/a", 0), generate("https://example.com/a"))
		assert.Len(t, generate("https://example.com/a"), shortener.DefaultCodeLength)
	})
}
