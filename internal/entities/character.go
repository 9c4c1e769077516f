package entities

import (
	"slices"

	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

// EntityTypeCharacter is the core.Entity type reported by characters
const EntityTypeCharacter = "character"

// UnknownCharacterName is returned when a name lookup misses
const UnknownCharacterName = "Unknown"

// Team is the side a character fights on
type Team string

// Teams
const (
	TeamGood Team = "good"
	TeamEvil Team = "evil"
)

// ParseTeam converts user input to a Team
func ParseTeam(s string) (Team, error) {
	switch Team(s) {
	case TeamGood, TeamEvil:
		return Team(s), nil
	default:
		return "", errors.InvalidArgumentf("team must be %q or %q, got %q", TeamGood, TeamEvil, s)
	}
}

// Attack is one attack option. Damage is dice notation such as "1d6+3" and
// is stored as typed.
type Attack struct {
	Name   string `json:"name"`
	Bonus  int    `json:"bonus"`
	Damage string `json:"damage"`
}

// Character is a combatant in the roster, either a player or an NPC
type Character struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Team               Team     `json:"team"`
	IsPlayer           bool     `json:"isPlayer"`
	AC                 int      `json:"ac"`
	HP                 int      `json:"hp"`
	InitiativeModifier int      `json:"initiativeModifier"`
	Attacks            []Attack `json:"attacks"`
}

// GetID implements core.Entity
func (c Character) GetID() string {
	return c.ID
}

// GetType implements core.Entity
func (c Character) GetType() string {
	return EntityTypeCharacter
}

// IsNPC reports whether the game master rolls initiative for this character
func (c Character) IsNPC() bool {
	return !c.IsPlayer
}

// Clone returns a copy that shares no slices with c
func (c Character) Clone() Character {
	c.Attacks = slices.Clone(c.Attacks)
	return c
}

// CharacterField names a single updatable character field. Values match the
// stored JSON keys.
type CharacterField string

// Updatable character fields
const (
	FieldName               CharacterField = "name"
	FieldTeam               CharacterField = "team"
	FieldIsPlayer           CharacterField = "isPlayer"
	FieldAC                 CharacterField = "ac"
	FieldHP                 CharacterField = "hp"
	FieldInitiativeModifier CharacterField = "initiativeModifier"
	FieldAttacks            CharacterField = "attacks"
)

// WithField returns a copy of c with one field replaced. The id cannot be
// changed and value must have the field's Go type.
func (c Character) WithField(field CharacterField, value any) (Character, error) {
	out := c.Clone()

	switch field {
	case FieldName:
		v, ok := value.(string)
		if !ok {
			return c, fieldTypeError(field, "string", value)
		}
		out.Name = v
	case FieldTeam:
		var raw string
		switch v := value.(type) {
		case Team:
			raw = string(v)
		case string:
			raw = v
		default:
			return c, fieldTypeError(field, "Team", value)
		}
		team, err := ParseTeam(raw)
		if err != nil {
			return c, err
		}
		out.Team = team
	case FieldIsPlayer:
		v, ok := value.(bool)
		if !ok {
			return c, fieldTypeError(field, "bool", value)
		}
		out.IsPlayer = v
	case FieldAC, FieldHP, FieldInitiativeModifier:
		v, ok := value.(int)
		if !ok {
			return c, fieldTypeError(field, "int", value)
		}
		switch field {
		case FieldAC:
			out.AC = v
		case FieldHP:
			out.HP = v
		default:
			out.InitiativeModifier = v
		}
	case FieldAttacks:
		v, ok := value.([]Attack)
		if !ok {
			return c, fieldTypeError(field, "[]Attack", value)
		}
		out.Attacks = slices.Clone(v)
	default:
		return c, errors.InvalidArgumentf("character field %q cannot be updated", field)
	}

	return out, nil
}

func fieldTypeError(field CharacterField, want string, got any) error {
	return errors.InvalidArgumentf("character field %q expects %s, got %T", field, want, got).
		WithMeta("field", string(field))
}

// CharacterPatch is a partial update. Nil fields are left alone.
type CharacterPatch struct {
	Name               *string
	Team               *Team
	IsPlayer           *bool
	AC                 *int
	HP                 *int
	InitiativeModifier *int
	Attacks            []Attack
}

// Apply merges the patch into c and returns the result. A team outside the
// known set returns InvalidArgument and c unchanged.
func (p CharacterPatch) Apply(c Character) (Character, error) {
	out := c.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Team != nil {
		team, err := ParseTeam(string(*p.Team))
		if err != nil {
			return c, err
		}
		out.Team = team
	}
	if p.IsPlayer != nil {
		out.IsPlayer = *p.IsPlayer
	}
	if p.AC != nil {
		out.AC = *p.AC
	}
	if p.HP != nil {
		out.HP = *p.HP
	}
	if p.InitiativeModifier != nil {
		out.InitiativeModifier = *p.InitiativeModifier
	}
	if p.Attacks != nil {
		out.Attacks = slices.Clone(p.Attacks)
	}
	return out, nil
}

var _ core.Entity = Character{}
