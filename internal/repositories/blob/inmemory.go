package blob

import (
	"bytes"
	"context"
	"sync"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

// InMemoryRepository implements Repository with a map. Nothing survives the
// process.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string][]byte
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string][]byte),
	}
}

// Get retrieves a blob by key
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.store[input.Key]
	if !exists {
		return nil, errors.NotFoundf("blob %s not found", input.Key).WithMeta("key", input.Key)
	}

	// Return a copy to prevent external modification
	return &GetOutput{Value: bytes.Clone(value)}, nil
}

// Set stores a blob
func (r *InMemoryRepository) Set(_ context.Context, input SetInput) (*SetOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[input.Key] = bytes.Clone(input.Value)

	return &SetOutput{}, nil
}
