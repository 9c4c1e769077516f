// Package collection implements an ordered, id-keyed roster that lives in a
// reactive container and mirrors itself to one blob key. The character and
// vehicle stores are thin typed wrappers around it.
package collection

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/reactive"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
)

// DefaultWriteTimeout bounds a single blob read or write
const DefaultWriteTimeout = 2 * time.Second

// Item is an element of a collection
type Item[T any] interface {
	GetID() string
	Clone() T
}

// Config holds the dependencies for a collection
type Config struct {
	Repository   blob.Repository
	Key          string
	WriteTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	errors.ValidateRequired("Key", c.Key, vb)
	if c.WriteTimeout < 0 {
		vb.Field("WriteTimeout", "cannot be negative")
	}

	return vb.Build()
}

// Collection is an ordered slice of T published through a reactive.Value.
// Every published slice is freshly allocated; subscribers must treat it as
// read-only.
type Collection[T Item[T]] struct {
	key     string
	repo    blob.Repository
	timeout time.Duration

	state       *reactive.Value[[]T]
	stopPersist reactive.Unsubscribe
}

// New creates a collection hydrated from cfg.Key and installs the standing
// subscription that writes every change back
func New[T Item[T]](cfg *Config) (*Collection[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	timeout := cfg.WriteTimeout
	if timeout == 0 {
		timeout = DefaultWriteTimeout
	}

	c := &Collection[T]{
		key:     cfg.Key,
		repo:    cfg.Repository,
		timeout: timeout,
	}
	items, _ := c.read()
	c.state = reactive.New(items)

	// The first delivery is the value just read; writing it back would
	// replace an unparseable blob before the user changed anything.
	primed := false
	c.stopPersist = c.state.Subscribe(func(items []T) {
		if !primed {
			primed = true
			return
		}
		c.persist(items)
	})

	return c, nil
}

// Subscribe registers cb for every published state, starting with the
// current one
func (c *Collection[T]) Subscribe(cb func([]T)) reactive.Unsubscribe {
	return c.state.Subscribe(cb)
}

// Items returns a deep copy of the current state
func (c *Collection[T]) Items() []T {
	current := c.state.Get()
	out := make([]T, len(current))
	for i, item := range current {
		out[i] = item.Clone()
	}
	return out
}

// Find returns a copy of the item with id
func (c *Collection[T]) Find(id string) (T, bool) {
	for _, item := range c.state.Get() {
		if item.GetID() == id {
			return item.Clone(), true
		}
	}
	var zero T
	return zero, false
}

// Append adds item to the end and publishes
func (c *Collection[T]) Append(item T) {
	current := c.state.Get()
	next := make([]T, len(current), len(current)+1)
	copy(next, current)
	c.state.Set(append(next, item.Clone()))
}

// Replace applies fn to the item with id and publishes the result. It
// reports false, without publishing, when no item has that id. An error
// from fn aborts the change.
func (c *Collection[T]) Replace(id string, fn func(T) (T, error)) (bool, error) {
	current := c.state.Get()
	for i, item := range current {
		if item.GetID() != id {
			continue
		}

		updated, err := fn(item.Clone())
		if err != nil {
			return true, err
		}

		next := make([]T, len(current))
		copy(next, current)
		next[i] = updated
		c.state.Set(next)
		return true, nil
	}
	return false, nil
}

// Remove drops every item with id. It reports false, without publishing,
// when nothing matched.
func (c *Collection[T]) Remove(id string) bool {
	current := c.state.Get()
	next := make([]T, 0, len(current))
	for _, item := range current {
		if item.GetID() != id {
			next = append(next, item)
		}
	}
	if len(next) == len(current) {
		return false
	}
	c.state.Set(next)
	return true
}

// Reset publishes an empty collection
func (c *Collection[T]) Reset() {
	c.state.Set([]T{})
}

// Load re-reads the blob and replaces the in-memory state with it. When the
// blob is absent, unreadable or malformed the in-memory state is kept and
// nothing is published or written.
func (c *Collection[T]) Load() {
	items, ok := c.read()
	if !ok {
		slog.Warn("stored collection not usable, keeping in-memory collection",
			"key", c.key,
			"count", len(c.state.Get()))
		return
	}
	c.state.Set(items)
}

// Close stops persisting. Later mutations stay in memory only.
func (c *Collection[T]) Close() {
	if c.stopPersist != nil {
		c.stopPersist()
	}
}

// read loads the blob. Absent, unreadable or malformed data all yield an
// empty collection and report false.
func (c *Collection[T]) read() ([]T, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	output, err := c.repo.Get(ctx, blob.GetInput{Key: c.key})
	if err != nil {
		if errors.IsNotFound(err) {
			slog.DebugContext(ctx, "no stored collection, starting empty",
				"key", c.key)
		} else {
			slog.WarnContext(ctx, "failed to read stored collection, starting empty",
				"key", c.key,
				"error", err.Error())
		}
		return []T{}, false
	}

	var items []T
	if err := json.Unmarshal(output.Value, &items); err != nil {
		slog.WarnContext(ctx, "stored collection is malformed, starting empty",
			"key", c.key,
			"bytes", len(output.Value),
			"error", err.Error())
		return []T{}, false
	}
	if items == nil {
		items = []T{}
	}

	slog.DebugContext(ctx, "loaded stored collection",
		"key", c.key,
		"count", len(items))

	return items, true
}

// persist writes the whole collection. Failures are logged; the in-memory
// state remains authoritative until the next successful write.
func (c *Collection[T]) persist(items []T) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal collection",
			"key", c.key,
			"error", err.Error())
		return
	}

	if _, err := c.repo.Set(ctx, blob.SetInput{Key: c.key, Value: data}); err != nil {
		slog.ErrorContext(ctx, "failed to persist collection",
			"key", c.key,
			"count", len(items),
			"error", err.Error())
	}
}
