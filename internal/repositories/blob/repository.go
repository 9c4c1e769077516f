// Package blob provides the key/value blob storage the stores persist to.
// Each key holds one whole JSON document; writes always replace the previous
// value.
package blob

//go:generate mockgen -destination=mock/mock_repository.go -package=blobmock github.com/KirkDiggler/initiative-tracker/internal/repositories/blob Repository

import (
	"context"
)

// Keys used by the stores. Encounters are never persisted.
const (
	KeyCharacters = "characters"
	KeyVehicles   = "vehicles"
	KeySettings   = "settings"
)

const (
	errKeyEmpty = "key cannot be empty"
)

// Repository defines the blob storage interface
type Repository interface {
	// Get returns the stored value for a key
	// Returns errors.InvalidArgument for an empty key
	// Returns errors.NotFound if nothing is stored under the key
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Set stores value under key, replacing whatever was there
	// Returns errors.InvalidArgument for an empty key
	// Returns errors.Internal for storage failures
	Set(ctx context.Context, input SetInput) (*SetOutput, error)
}

// GetInput defines the input for reading a blob
type GetInput struct {
	Key string
}

// GetOutput defines the output for reading a blob
type GetOutput struct {
	Value []byte
}

// SetInput defines the input for writing a blob
type SetInput struct {
	Key   string
	Value []byte
}

// SetOutput defines the output for writing a blob
type SetOutput struct {
	// Empty for now, can be extended later
}
