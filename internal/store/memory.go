package store

import (
	"context"
	"sync"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	links  map[shortener.Code]shortener.Link // code -> link
	urls   map[string]shortener.Code         // original url -> code
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[shortener.Code]shortener.Link),
		urls:  make(map[string]shortener.Code),
	}
}

// Insert registers link, assigning its ID. Both uniqueness checks and the write
// happen under one lock.
func (m *MemoryStore) Insert(_ context.Context, link *shortener.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrConflict
	}

	if _, ok := m.urls[link.OriginalURL]; ok {
		return shortener.ErrConflict
	}

	m.nextID++
	link.ID = m.nextID

	m.links[link.Code] = *link
	m.urls[link.OriginalURL] = link.Code

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) GetByURL(_ context.Context, originalURL string) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.urls[originalURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	link := m.links[code]

	return &link, nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
