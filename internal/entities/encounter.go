package entities

import (
	"cmp"
	"slices"
)

// Initiative rolls are a single d20
const (
	MinInitiativeRoll = 1
	MaxInitiativeRoll = 20
)

// Initiative is one combatant's place in an encounter. CharacterID refers
// into the character roster.
type Initiative struct {
	CharacterID string `json:"characterId"`
	Initiative  int    `json:"initiative"`
	Modifier    int    `json:"modifier"`
}

// Total is the roll plus the modifier, used for turn order
func (i Initiative) Total() int {
	return i.Initiative + i.Modifier
}

// Encounter is one combat session. At most one exists at a time and it is
// never persisted.
type Encounter struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Active     bool         `json:"active"`
	Initiative []Initiative `json:"initiative"`
}

// Clone returns a copy that shares no slices with e
func (e Encounter) Clone() Encounter {
	e.Initiative = slices.Clone(e.Initiative)
	return e
}

// Find returns the entry for characterID
func (e Encounter) Find(characterID string) (Initiative, bool) {
	for _, entry := range e.Initiative {
		if entry.CharacterID == characterID {
			return entry, true
		}
	}
	return Initiative{}, false
}

// TurnOrder returns the entries sorted highest total first. Ties go to the
// higher modifier, then to whoever was added first.
func (e Encounter) TurnOrder() []Initiative {
	order := slices.Clone(e.Initiative)
	slices.SortStableFunc(order, func(a, b Initiative) int {
		if c := cmp.Compare(b.Total(), a.Total()); c != 0 {
			return c
		}
		return cmp.Compare(b.Modifier, a.Modifier)
	})
	return order
}
