// Package idgen provides ID generation utilities
package idgen

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/KirkDiggler/initiative-tracker/internal/pkg/clock"
)

//go:generate mockgen -destination=mock/mock.go -package=idgenmock github.com/KirkDiggler/initiative-tracker/internal/pkg/idgen Generator

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// TimestampGenerator generates millisecond timestamp IDs. Two calls in the
// same millisecond, or a clock that steps backwards, still produce strictly
// increasing values.
type TimestampGenerator struct {
	clock clock.Clock

	mu   sync.Mutex
	last int64
}

// NewTimestamp creates a timestamp generator; a nil clock uses system time
func NewTimestamp(c clock.Clock) *TimestampGenerator {
	if c == nil {
		c = clock.New()
	}
	return &TimestampGenerator{clock: c}
}

// Generate returns the current unix millisecond time as a decimal string
func (g *TimestampGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now().UnixMilli()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now

	return strconv.FormatInt(now, 10)
}

// SequentialGenerator generates sequential IDs for testing
type SequentialGenerator struct {
	prefix  string
	counter uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate creates a new sequential ID
func (g *SequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.counter, 1)
	if g.prefix != "" {
		return fmt.Sprintf("%s_%d", g.prefix, n)
	}
	return fmt.Sprintf("%d", n)
}

// UUIDGenerator generates UUIDs with optional prefix
type UUIDGenerator struct {
	prefix string
}

// NewUUID creates a new UUID generator with optional prefix
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate creates a new UUID-based ID
func (g *UUIDGenerator) Generate() string {
	id := uuid.New().String()
	if g.prefix != "" {
		return fmt.Sprintf("%s_%s", g.prefix, id)
	}
	return id
}
