package shortener

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no link matches a lookup.
	ErrNotFound = errors.New("url not found")

	// ErrConflict is returned by Repository.Insert when the code or the original URL
	// is already registered. It signals that another writer won the race.
	ErrConflict = errors.New("link already exists")

	// ErrCollisionExhausted is returned when no free suffixed code was found within
	// the configured number of attempts.
	ErrCollisionExhausted = errors.New("short code collision resolution exhausted")

	// ErrInvalidURL is returned for input that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)

// Repository defines the interface for link storage operations.
//
// Implementations must enforce uniqueness of both Code and OriginalURL atomically
// and report a violation of either as ErrConflict.
type Repository interface {
	Insert(ctx context.Context, link *Link) error
	GetByCode(ctx context.Context, code Code) (*Link, error)
	GetByURL(ctx context.Context, originalURL string) (*Link, error)
}
