// Package character owns the combatant roster: players and NPCs with their
// stats and attacks. The roster is persisted under the "characters" key.
package character

import (
	"log/slog"
	"time"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/idgen"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/reactive"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/blob"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/collection"
)

// Config holds the dependencies for the character store
type Config struct {
	Repository blob.Repository
	// IDGenerator defaults to a millisecond timestamp generator
	IDGenerator  idgen.Generator
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
	return vb.Build()
}

// Store is the character roster
type Store struct {
	roster *collection.Collection[entities.Character]
	idGen  idgen.Generator
}

// New creates the store and loads the persisted roster
func New(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewTimestamp(nil)
	}

	roster, err := collection.New[entities.Character](&collection.Config{
		Repository:   cfg.Repository,
		Key:          blob.KeyCharacters,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		roster: roster,
		idGen:  gen,
	}, nil
}

// Subscribe registers cb for every roster change, starting with the current
// roster. The slice passed to cb must not be modified.
func (s *Store) Subscribe(cb func([]entities.Character)) reactive.Unsubscribe {
	return s.roster.Subscribe(cb)
}

// Get returns a copy of the roster in insertion order
func (s *Store) Get() []entities.Character {
	return s.roster.Items()
}

// Find returns the character with id
func (s *Store) Find(id string) (entities.Character, bool) {
	return s.roster.Find(id)
}

// Add appends a character under a newly generated id. Any id already set on
// input is ignored.
func (s *Store) Add(input entities.Character) {
	character := input.Clone()
	character.ID = s.nextID()

	s.roster.Append(character)

	slog.Debug("character added",
		"character_id", character.ID,
		"name", character.Name,
		"is_player", character.IsPlayer)
}

// Update replaces a single field. A missing id is silently ignored; an
// unknown field, the id field or a mistyped value returns InvalidArgument.
func (s *Store) Update(id string, field entities.CharacterField, value any) error {
	_, err := s.roster.Replace(id, func(c entities.Character) (entities.Character, error) {
		return c.WithField(field, value)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to update character %s", id)
	}
	return nil
}

// UpdateObject merges every set field of patch. A missing id is silently
// ignored; an unknown team returns InvalidArgument and nothing changes.
func (s *Store) UpdateObject(id string, patch entities.CharacterPatch) error {
	_, err := s.roster.Replace(id, func(c entities.Character) (entities.Character, error) {
		return patch.Apply(c)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to update character %s", id)
	}
	return nil
}

// Remove deletes the character with id, if present
func (s *Store) Remove(id string) {
	if s.roster.Remove(id) {
		slog.Debug("character removed", "character_id", id)
	}
}

// Name returns the character's name, or "Unknown" when no character has id
func (s *Store) Name(id string) string {
	if c, ok := s.roster.Find(id); ok {
		return c.Name
	}
	return entities.UnknownCharacterName
}

// Reset clears the roster
func (s *Store) Reset() {
	s.roster.Reset()
}

// Close stops persisting changes
func (s *Store) Close() {
	s.roster.Close()
}

// nextID returns an id no current character uses. Timestamp ids cannot
// repeat within a process, but a roster loaded from storage may already hold
// one from a clock that was ahead.
func (s *Store) nextID() string {
	for {
		id := s.idGen.Generate()
		if _, taken := s.roster.Find(id); !taken {
			return id
		}
	}
}
