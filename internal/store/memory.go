package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/item-api/internal/model"
)

var itemsStored = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "items_stored",
		Help: "Number of items currently held in memory",
	},
)

// MemoryStore implements Store with an ordered in-memory collection.
// IDs start at 1 and are never reused, even after deletion.
type MemoryStore struct {
	mu     sync.Mutex
	items  []model.Item
	nextID int64
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  make([]model.Item, 0),
		nextID: 1,
	}
}

// List returns a copy of all items in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list items: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Item, len(s.items))
	copy(items, s.items)

	return items, nil
}

// Get retrieves an item by its ID.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get item: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	item := s.items[idx]
	return &item, nil
}

// Create appends a new item and advances the ID counter.
// Nothing is mutated when validation fails.
func (s *MemoryStore) Create(ctx context.Context, input *model.CreateItemInput) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create item: %w", ctx.Err())
	default:
	}

	if input == nil || input.Validate() != nil {
		return nil, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newItem := model.Item{
		ID:          s.nextID,
		Name:        *input.Name,
		Description: input.DescriptionOrDefault(),
	}

	s.items = append(s.items, newItem)
	s.nextID++
	itemsStored.Set(float64(len(s.items)))

	return &newItem, nil
}

// Update modifies an existing item in place. A nil or empty input
// returns the item unchanged.
func (s *MemoryStore) Update(ctx context.Context, id int64, input *model.UpdateItemInput) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update item: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	input.Apply(&s.items[idx])

	updated := s.items[idx]
	return &updated, nil
}

// Delete removes an item, keeping the relative order of the rest.
func (s *MemoryStore) Delete(ctx context.Context, id int64) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("delete item: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	itemsStored.Set(float64(len(s.items)))

	return &removed, nil
}

// indexOf returns the position of the item with the given ID or -1.
// Callers must hold s.mu.
func (s *MemoryStore) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
