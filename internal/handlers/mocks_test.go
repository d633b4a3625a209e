package handlers_test

import (
	"context"
	"errors"
	"sync"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/shortener"
)

var errMock = errors.New("mock error")

// recorder collects published analytics events.
type recorder struct {
	mu       sync.Mutex
	created  []*analytics.LinkCreatedEvent
	resolved []*analytics.LinkResolvedEvent
	err      error
}

func (r *recorder) publishers() *analytics.Publishers {
	return &analytics.Publishers{
		LinkCreated: func(_ context.Context, event *analytics.LinkCreatedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.created = append(r.created, event)

			return r.err
		},
		LinkResolved: func(_ context.Context, event *analytics.LinkResolvedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.resolved = append(r.resolved, event)

			return r.err
		},
	}
}

type mockStats struct {
	clicks int64
	err    error
}

func (m *mockStats) Clicks(context.Context, string) (int64, error) {
	return m.clicks, m.err
}

// brokenStore fails every call with errMock.
type brokenStore struct{}

func (brokenStore) Insert(context.Context, *shortener.Link) error { return errMock }

func (brokenStore) GetByCode(context.Context, shortener.Code) (*shortener.Link, error) {
	return nil, errMock
}

func (brokenStore) GetByURL(context.Context, string) (*shortener.Link, error) {
	return nil, errMock
}
