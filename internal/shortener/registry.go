package shortener

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxSuffixAttempts bounds the numeric suffixes tried for one colliding code.
	DefaultMaxSuffixAttempts = 100
	// DefaultMaxConflictRetries bounds how often a lost insert race is retried.
	DefaultMaxConflictRetries = 3
)

// Option configures a Registry.
type Option func(*Registry)

// WithMaxSuffixAttempts sets the number of numeric suffixes tried after a collision.
func WithMaxSuffixAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxSuffixAttempts = n
		}
	}
}

// WithMaxConflictRetries sets how many times Shorten restarts after losing an insert race.
func WithMaxConflictRetries(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxConflictRetries = n
		}
	}
}

// WithReservedCodes marks codes that must never be issued, such as path segments
// served by other routes.
func WithReservedCodes(codes ...Code) Option {
	return func(r *Registry) {
		for _, code := range codes {
			r.reserved[code] = struct{}{}
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry owns the URL to code mapping. Shorten is idempotent per normalized URL and
// never hands out a code that belongs to another URL.
type Registry struct {
	store              Repository
	generateCode       CodeGenerator
	logger             *zap.Logger
	maxSuffixAttempts  int
	maxConflictRetries int
	reserved           map[Code]struct{}
	now                func() time.Time
}

// NewRegistry creates a link registry backed by store.
func NewRegistry(store Repository, generator CodeGenerator, logger *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		store:              store,
		generateCode:       generator,
		logger:             logger,
		maxSuffixAttempts:  DefaultMaxSuffixAttempts,
		maxConflictRetries: DefaultMaxConflictRetries,
		reserved:           make(map[Code]struct{}),
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Shorten returns the link registered for rawURL, registering it first if needed.
func (r *Registry) Shorten(ctx context.Context, rawURL string) (*Link, error) {
	normalizedURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		link, err := r.registerOrFetch(ctx, normalizedURL)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrConflict) {
			return nil, err
		}

		if attempt >= r.maxConflictRetries {
			return nil, fmt.Errorf("register link after %d attempts: %w", attempt, err)
		}

		r.logger.Debug("lost insert race, retrying",
			zap.Int("attempt", attempt),
		)
	}
}

// Resolve returns the link registered under code, or ErrNotFound.
func (r *Registry) Resolve(ctx context.Context, code Code) (*Link, error) {
	return r.store.GetByCode(ctx, code)
}

func (r *Registry) registerOrFetch(ctx context.Context, normalizedURL string) (*Link, error) {
	existing, err := r.store.GetByURL(ctx, normalizedURL)
	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	code, err := r.freeCode(ctx, Code(r.generateCode(normalizedURL)))
	if err != nil {
		return nil, err
	}

	link := &Link{
		Code:        code,
		OriginalURL: normalizedURL,
		CreatedAt:   r.now(),
	}

	if err = r.store.Insert(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// freeCode returns candidate if unused and not reserved, otherwise the first unused candidate+N for
// N = 1, 2, ... up to maxSuffixAttempts.
func (r *Registry) freeCode(ctx context.Context, candidate Code) (Code, error) {
	taken, err := r.codeTaken(ctx, candidate)
	if err != nil || !taken {
		return candidate, err
	}

	for suffix := 1; suffix <= r.maxSuffixAttempts; suffix++ {
		code := candidate + Code(strconv.Itoa(suffix))

		taken, err = r.codeTaken(ctx, code)
		if err != nil {
			return "", err
		}

		if !taken {
			r.logger.Debug("resolved short code collision",
				zap.String("candidate", string(candidate)),
				zap.String("code", string(code)),
			)

			return code, nil
		}
	}

	r.logger.Error("short code collision resolution exhausted",
		zap.String("candidate", string(candidate)),
		zap.Int("attempts", r.maxSuffixAttempts),
	)

	return "", fmt.Errorf("%w: %q after %d suffixes", ErrCollisionExhausted, candidate, r.maxSuffixAttempts)
}

func (r *Registry) codeTaken(ctx context.Context, code Code) (bool, error) {
	if _, ok := r.reserved[code]; ok {
		return true, nil
	}

	_, err := r.store.GetByCode(ctx, code)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return false, err
}
