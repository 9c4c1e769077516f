// Package dice rolls ad hoc dice expressions and character attacks
package dice

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

const (
	// MaxDiceCount caps a single expression
	MaxDiceCount = 100

	attackDie = 20
)

var (
	// Notation like "2d6", "d20", "1d8+3" or "3d4 - 1"
	diceNotationRegex = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)
)

// Service defines the dice operations
type Service interface {
	Roll(ctx context.Context, input *RollInput) (*RollOutput, error)
	RollAttack(ctx context.Context, input *RollAttackInput) (*RollAttackOutput, error)
}

// CharacterFinder looks characters up by id
type CharacterFinder interface {
	Find(id string) (entities.Character, bool)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	Characters CharacterFinder
	// Roller defaults to dice.DefaultRoller
	Roller dice.Roller
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

type orchestrator struct {
	characters CharacterFinder
	roller     dice.Roller
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}

	return &orchestrator{
		characters: cfg.Characters,
		roller:     roller,
	}, nil
}

type expression struct {
	count    int
	size     int
	modifier int
}

// parseDiceNotation parses XdY with an optional +N or -N
func parseDiceNotation(notation string) (expression, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(notation), ""))
	matches := diceNotationRegex.FindStringSubmatch(normalized)
	if matches == nil {
		return expression{}, errors.InvalidArgumentf("invalid dice notation: %s (expected format: XdY+N)", notation)
	}

	expr := expression{count: 1}
	if matches[1] != "" {
		count, err := strconv.Atoi(matches[1])
		if err != nil {
			return expression{}, errors.InvalidArgumentf("invalid dice count in notation: %s", notation)
		}
		expr.count = count
	}

	size, err := strconv.Atoi(matches[2])
	if err != nil {
		return expression{}, errors.InvalidArgumentf("invalid die size in notation: %s", notation)
	}
	expr.size = size

	if matches[3] != "" {
		modifier, err := strconv.Atoi(matches[3])
		if err != nil {
			return expression{}, errors.InvalidArgumentf("invalid modifier in notation: %s", notation)
		}
		expr.modifier = modifier
	}

	if expr.count <= 0 || expr.size <= 0 {
		return expression{}, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}
	if expr.count > MaxDiceCount {
		return expression{}, errors.OutOfRangef("at most %d dice per roll: %s", MaxDiceCount, notation)
	}

	return expr, nil
}

func (o *orchestrator) evaluate(notation string, expr expression) (*RollOutput, error) {
	rolls, err := o.roller.RollN(expr.count, expr.size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to roll %s", notation)
	}

	total := expr.modifier
	for _, r := range rolls {
		total += r
	}

	return &RollOutput{
		Notation: notation,
		Dice:     rolls,
		Modifier: expr.modifier,
		Total:    total,
	}, nil
}

// Roll evaluates a dice expression
func (o *orchestrator) Roll(ctx context.Context, input *RollInput) (*RollOutput, error) {
	if input == nil || strings.TrimSpace(input.Notation) == "" {
		return nil, errors.InvalidArgument("dice notation is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "roll canceled")
	}

	expr, err := parseDiceNotation(input.Notation)
	if err != nil {
		return nil, err
	}

	return o.evaluate(input.Notation, expr)
}

// RollAttack rolls d20 plus the attack bonus, then the attack's damage. The
// damage text is free-form; anything that is not XdY+N is rejected here.
func (o *orchestrator) RollAttack(ctx context.Context, input *RollAttackInput) (*RollAttackOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CharacterID", input.CharacterID, vb)
	errors.ValidateRequired("AttackName", input.AttackName, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "attack canceled")
	}

	character, ok := o.characters.Find(input.CharacterID)
	if !ok {
		return nil, errors.NotFoundf("character %s not found", input.CharacterID)
	}

	var (
		attack entities.Attack
		found  bool
	)
	for _, a := range character.Attacks {
		if strings.EqualFold(a.Name, input.AttackName) {
			attack, found = a, true
			break
		}
	}
	if !found {
		return nil, errors.NotFoundf("%s has no attack named %s", character.Name, input.AttackName)
	}

	damageExpr, err := parseDiceNotation(attack.Damage)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot roll damage for %s", attack.Name)
	}

	toHit, err := o.evaluate(fmt.Sprintf("1d%d%+d", attackDie, attack.Bonus), expression{
		count:    1,
		size:     attackDie,
		modifier: attack.Bonus,
	})
	if err != nil {
		return nil, err
	}

	critical := toHit.Dice[0] == attackDie
	if critical {
		damageExpr.count *= 2
	}

	damage, err := o.evaluate(attack.Damage, damageExpr)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "attack rolled",
		"character_id", character.ID,
		"attack", attack.Name,
		"to_hit", toHit.Total,
		"damage", damage.Total,
		"critical", critical)

	return &RollAttackOutput{
		Character: character,
		Attack:    attack,
		ToHit:     toHit,
		Damage:    damage,
		Critical:  critical,
	}, nil
}
