package store

import (
	"context"
	"slices"
	"sync"

	"github.com/icdts/itemboard/internal/models"
)

// Memory keeps items in process memory. Its contents last as long as the process.
type Memory struct {
	mu     sync.RWMutex
	items  []models.Item
	lastID int64
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{items: []models.Item{}}
}

// NewSeededMemory creates a store holding the seed items with ids 1..n.
func NewSeededMemory() *Memory {
	m := NewMemory()
	for _, name := range models.SeedNames {
		m.lastID++
		m.items = append(m.items, models.Item{ID: m.lastID, Name: name})
	}
	return m
}

func (m *Memory) List(_ context.Context) ([]models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items), nil
}

func (m *Memory) Create(_ context.Context, name string) (models.Item, error) {
	if name == "" {
		return models.Item{}, ErrNameRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	item := models.Item{ID: m.lastID, Name: name}
	m.items = append(m.items, item)
	return item, nil
}

func (m *Memory) Update(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.items[i].Name = name
	return nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.items = slices.Delete(m.items, i, i+1)
	return nil
}

func (m *Memory) indexOf(id int64) int {
	return slices.IndexFunc(m.items, func(it models.Item) bool { return it.ID == id })
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
