// Package settings persists the tracker's display preferences under the
// "settings" key.
package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/reactive"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/collection"
)

// Config holds the dependencies for the settings store
type Config struct {
	Repository   blob.Repository
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
	if c.WriteTimeout < 0 {
		vb.Field("WriteTimeout", "cannot be negative")
	}
	return vb.Build()
}

// Store holds the current settings
type Store struct {
	repo    blob.Repository
	timeout time.Duration

	state       *reactive.Value[entities.Settings]
	stopPersist reactive.Unsubscribe
}

// New loads stored settings, falling back to the defaults
func New(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	timeout := cfg.WriteTimeout
	if timeout == 0 {
		timeout = collection.DefaultWriteTimeout
	}

	s := &Store{
		repo:    cfg.Repository,
		timeout: timeout,
	}
	s.state = reactive.New(s.read())

	primed := false
	s.stopPersist = s.state.Subscribe(func(settings entities.Settings) {
		if !primed {
			primed = true
			return
		}
		s.persist(settings)
	})

	return s, nil
}

// Subscribe registers cb for every change, starting with the current value
func (s *Store) Subscribe(cb func(entities.Settings)) reactive.Unsubscribe {
	return s.state.Subscribe(cb)
}

// Get returns the current settings
func (s *Store) Get() entities.Settings {
	return s.state.Get()
}

// Set replaces the settings
func (s *Store) Set(settings entities.Settings) {
	s.state.Set(settings)
}

// Update applies fn to the current settings
func (s *Store) Update(fn func(entities.Settings) entities.Settings) {
	s.state.Update(fn)
}

// SetShowDebugInfo toggles the debug panel
func (s *Store) SetShowDebugInfo(show bool) {
	s.Update(func(current entities.Settings) entities.Settings {
		current.ShowDebugInfo = show
		return current
	})
}

// Close stops persisting changes
func (s *Store) Close() {
	if s.stopPersist != nil {
		s.stopPersist()
	}
}

func (s *Store) read() entities.Settings {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	output, err := s.repo.Get(ctx, blob.GetInput{Key: blob.KeySettings})
	if err != nil {
		if !errors.IsNotFound(err) {
			slog.WarnContext(ctx, "failed to read settings, using defaults",
				"error", err.Error())
		}
		return entities.DefaultSettings()
	}

	settings := entities.DefaultSettings()
	if err := json.Unmarshal(output.Value, &settings); err != nil {
		slog.WarnContext(ctx, "stored settings are malformed, using defaults",
			"error", err.Error())
		return entities.DefaultSettings()
	}

	return settings
}

func (s *Store) persist(settings entities.Settings) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := json.Marshal(settings)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal settings", "error", err.Error())
		return
	}

	if _, err := s.repo.Set(ctx, blob.SetInput{Key: blob.KeySettings, Value: data}); err != nil {
		slog.ErrorContext(ctx, "failed to persist settings", "error", err.Error())
	}
}
