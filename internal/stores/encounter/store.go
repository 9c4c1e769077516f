// Package encounter owns the single active encounter and its initiative
// order. The encounter is held in memory only.
//
// The game master's NPCs roll initiative automatically when an encounter
// starts; players roll their own dice and report the result through
// AddPlayerInitiative.
package encounter

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/idgen"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/optional"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/reactive"
)

// initiativeDie is the die size rolled for initiative
const initiativeDie = 20

// Roster is the read-only view of the character store the encounter needs.
// It is consulted live on every call, never copied up front.
type Roster interface {
	reactive.Readable[[]entities.Character]
	Find(id string) (entities.Character, bool)
}

// State is what subscribers receive: Some(encounter) or None
type State = optional.Option[entities.Encounter]

// Config holds the dependencies for the encounter store
type Config struct {
	Characters Roster
	// Roller defaults to dice.DefaultRoller
	Roller dice.Roller
	// IDGenerator defaults to UUIDs
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Characters == nil {
		vb.RequiredField("Characters")
	}
	return vb.Build()
}

// Store holds at most one encounter
type Store struct {
	characters Roster
	roller     dice.Roller
	idGen      idgen.Generator

	state           *reactive.Value[State]
	stopRosterWatch reactive.Unsubscribe
}

// New creates a store with no active encounter
func New(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}

	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewUUID("")
	}

	s := &Store{
		characters: cfg.Characters,
		roller:     roller,
		idGen:      gen,
		state:      reactive.New(optional.None[entities.Encounter]()),
	}
	s.stopRosterWatch = cfg.Characters.Subscribe(s.pruneRemoved)

	return s, nil
}

// Subscribe registers cb for every change, starting with the current state
func (s *Store) Subscribe(cb func(State)) reactive.Unsubscribe {
	return s.state.Subscribe(cb)
}

// Current returns a copy of the active encounter, if any
func (s *Store) Current() State {
	return optional.Map(s.state.Get(), entities.Encounter.Clone)
}

// StartEncounter rolls initiative for every NPC in the roster right now and
// replaces any previous encounter with a new active one. Players get no
// entry until they report a roll. Nothing changes if a roll fails or ctx is
// already done.
func (s *Store) StartEncounter(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeCanceled, "encounter start canceled")
	}

	roster := s.characters.Get()
	initiative := make([]entities.Initiative, 0, len(roster))
	for _, c := range roster {
		if !c.IsNPC() {
			continue
		}

		entry, err := s.rollInitiative(c)
		if err != nil {
			return err
		}
		initiative = append(initiative, entry)
	}

	encounter := entities.Encounter{
		ID:         s.idGen.Generate(),
		Name:       name,
		Active:     true,
		Initiative: initiative,
	}
	s.state.Set(optional.Some(encounter))

	slog.InfoContext(ctx, "Encounter started",
		"encounter_id", encounter.ID,
		"name", name,
		"npc_count", len(initiative),
		"roster_size", len(roster))

	return nil
}

// AddPlayerInitiative records a roll for characterID using the character's
// current modifier (0 if the character is unknown). An existing entry for
// the character is overwritten in place. Without an active encounter this
// does nothing.
func (s *Store) AddPlayerInitiative(characterID string, roll int) {
	current, ok := s.state.Get().Get()
	if !ok {
		slog.Debug("ignoring initiative with no active encounter",
			"character_id", characterID)
		return
	}

	modifier := 0
	if c, found := s.characters.Find(characterID); found {
		modifier = c.InitiativeModifier
	}

	next := current.Clone()
	entry := entities.Initiative{
		CharacterID: characterID,
		Initiative:  roll,
		Modifier:    modifier,
	}

	replaced := false
	for i := range next.Initiative {
		if next.Initiative[i].CharacterID == characterID {
			next.Initiative[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		next.Initiative = append(next.Initiative, entry)
	}

	s.state.Set(optional.Some(next))
}

// EndEncounter discards the active encounter and all its initiative
func (s *Store) EndEncounter() {
	if current, ok := s.state.Get().Get(); ok {
		slog.Info("Encounter ended",
			"encounter_id", current.ID,
			"name", current.Name)
	}
	s.state.Set(optional.None[entities.Encounter]())
}

// TurnOrder returns the active encounter's entries, highest total first.
// It is empty when there is no encounter.
func (s *Store) TurnOrder() []entities.Initiative {
	current, ok := s.state.Get().Get()
	if !ok {
		return []entities.Initiative{}
	}
	return current.TurnOrder()
}

// Close stops watching the roster
func (s *Store) Close() {
	if s.stopRosterWatch != nil {
		s.stopRosterWatch()
	}
}

func (s *Store) rollInitiative(c entities.Character) (entities.Initiative, error) {
	roll, err := s.roller.Roll(initiativeDie)
	if err != nil {
		return entities.Initiative{}, errors.Wrapf(err, "failed to roll initiative for %s", c.ID)
	}
	if roll < entities.MinInitiativeRoll || roll > entities.MaxInitiativeRoll {
		return entities.Initiative{}, errors.OutOfRangef("initiative roll %d for %s is outside 1-20", roll, c.ID)
	}

	return entities.Initiative{
		CharacterID: c.ID,
		Initiative:  roll,
		Modifier:    c.InitiativeModifier,
	}, nil
}

// pruneRemoved drops initiative entries whose character has left the
// roster, so the turn order never points at a deleted character
func (s *Store) pruneRemoved(roster []entities.Character) {
	current, ok := s.state.Get().Get()
	if !ok {
		return
	}

	present := make(map[string]struct{}, len(roster))
	for _, c := range roster {
		present[c.ID] = struct{}{}
	}

	kept := make([]entities.Initiative, 0, len(current.Initiative))
	for _, entry := range current.Initiative {
		if _, ok := present[entry.CharacterID]; ok {
			kept = append(kept, entry)
			continue
		}
		slog.Debug("dropping initiative for removed character",
			"encounter_id", current.ID,
			"character_id", entry.CharacterID)
	}
	if len(kept) == len(current.Initiative) {
		return
	}

	current.Initiative = kept
	s.state.Set(optional.Some(current))
}
