package testutils

import (
	"github.com/KirkDiggler/initiative-tracker/internal/entities"
)

// Fixture ids used across store tests
const (
	GoblinID  = "char-goblin-001"
	FighterID = "char-fighter-001"
	WizardID  = "char-wizard-001"
)

// CreateTestNPC creates an evil NPC with a single melee attack
func CreateTestNPC(id, name string, initiativeModifier int) entities.Character {
	return entities.Character{
		ID:                 id,
		Name:               name,
		Team:               entities.TeamEvil,
		IsPlayer:           false,
		AC:                 15,
		HP:                 7,
		InitiativeModifier: initiativeModifier,
		Attacks: []entities.Attack{
			{Name: "Scimitar", Bonus: 4, Damage: "1d6+2"},
		},
	}
}

// CreateTestPlayer creates a good-aligned player character
func CreateTestPlayer(id, name string, initiativeModifier int) entities.Character {
	return entities.Character{
		ID:                 id,
		Name:               name,
		Team:               entities.TeamGood,
		IsPlayer:           true,
		AC:                 18,
		HP:                 12,
		InitiativeModifier: initiativeModifier,
		Attacks: []entities.Attack{
			{Name: "Longsword", Bonus: 5, Damage: "1d8+3"},
		},
	}
}

// CreateTestRoster returns a goblin NPC, a fighter and a wizard, both players
func CreateTestRoster() []entities.Character {
	return []entities.Character{
		CreateTestNPC(GoblinID, "Goblin", 2),
		CreateTestPlayer(FighterID, "Thorin Oakenshield", 1),
		CreateTestPlayer(WizardID, "Gandalf the Grey", 5),
	}
}

// CreateTestVehicle creates a vehicle without an id
func CreateTestVehicle(name string) entities.Vehicle {
	return entities.Vehicle{
		Name:  name,
		AC:    13,
		MaxHP: 50,
		Speed: 30,
		Notes: "creaky axle",
	}
}
