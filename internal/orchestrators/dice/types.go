package dice

import "github.com/KirkDiggler/initiative-tracker/internal/entities"

// RollInput defines the request for rolling a dice expression
type RollInput struct {
	Notation string
}

// RollOutput is one evaluated expression
type RollOutput struct {
	Notation string
	Dice     []int
	Modifier int
	Total    int
}

// RollAttackInput names a character and one of its attacks
type RollAttackInput struct {
	CharacterID string
	AttackName  string
}

// RollAttackOutput carries the to-hit and damage rolls for an attack
type RollAttackOutput struct {
	Character entities.Character
	Attack    entities.Attack
	ToHit     *RollOutput
	Damage    *RollOutput
	// Critical is set when the d20 shows a natural 20; damage dice are
	// doubled
	Critical bool
}
