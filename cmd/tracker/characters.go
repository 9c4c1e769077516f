package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

var (
	charName     string
	charTeam     string
	charNPC      bool
	charAC       int
	charHP       int
	charInit     int
	charAttacks  []string
	resetConfirm bool
)

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"chars"},
	Short:   "Manage the character roster",
}

var listCharactersCmd = &cobra.Command{
	Use:   "list",
	Short: "List every character",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		printCharacters(cmd.OutOrStdout(), tracker.Characters.Get())
		return nil
	},
}

var addCharacterCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a character",
	Long: `Add a character to the roster. Attacks use name:bonus:damage, for example

  tracker characters add --name Goblin --team evil --npc --ac 15 --hp 7 --init 2 --attack Scimitar:4:1d6+2`,
	Args: cobra.NoArgs,
	RunE: addCharacter,
}

var setCharacterCmd = &cobra.Command{
	Use:   "set [id] [field] [value]",
	Short: "Update one field of a character",
	Long: `Update a single field. Fields: name, team, isPlayer, ac, hp,
initiativeModifier, attacks (as a JSON array).`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, field := args[0], entities.CharacterField(args[1])

		value, err := parseFieldValue(field, args[2])
		if err != nil {
			return err
		}
		if _, ok := tracker.Characters.Find(id); !ok {
			return errors.NotFoundf("character %s not found", id)
		}
		if err := tracker.Characters.Update(id, field, value); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s of %s\n", field, tracker.Characters.Name(id))
		return nil
	},
}

var removeCharacterCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ok := tracker.Characters.Find(args[0])
		if !ok {
			return errors.NotFoundf("character %s not found", args[0])
		}
		tracker.Characters.Remove(c.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", c.Name)
		return nil
	},
}

var resetCharactersCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every character",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !resetConfirm {
			return errors.FailedPrecondition("reset deletes the whole roster; pass --yes to confirm")
		}
		tracker.Characters.Reset()
		fmt.Fprintln(cmd.OutOrStdout(), "Roster cleared")
		return nil
	},
}

func init() {
	addCharacterCmd.Flags().StringVar(&charName, "name", "", "character name")
	addCharacterCmd.Flags().StringVar(&charTeam, "team", string(entities.TeamGood), "good or evil")
	addCharacterCmd.Flags().BoolVar(&charNPC, "npc", false, "controlled by the game master")
	addCharacterCmd.Flags().IntVar(&charAC, "ac", 10, "armor class")
	addCharacterCmd.Flags().IntVar(&charHP, "hp", 1, "hit points")
	addCharacterCmd.Flags().IntVar(&charInit, "init", 0, "initiative modifier")
	addCharacterCmd.Flags().StringArrayVar(&charAttacks, "attack", nil, "attack as name:bonus:damage (repeatable)")
	_ = addCharacterCmd.MarkFlagRequired("name")

	resetCharactersCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm deleting every character")

	charactersCmd.AddCommand(listCharactersCmd)
	charactersCmd.AddCommand(addCharacterCmd)
	charactersCmd.AddCommand(setCharacterCmd)
	charactersCmd.AddCommand(removeCharacterCmd)
	charactersCmd.AddCommand(resetCharactersCmd)
}

func addCharacter(cmd *cobra.Command, _ []string) error {
	team, err := entities.ParseTeam(charTeam)
	if err != nil {
		return err
	}

	attacks := make([]entities.Attack, 0, len(charAttacks))
	for _, raw := range charAttacks {
		attack, err := parseAttack(raw)
		if err != nil {
			return err
		}
		attacks = append(attacks, attack)
	}

	tracker.Characters.Add(entities.Character{
		Name:               charName,
		Team:               team,
		IsPlayer:           !charNPC,
		AC:                 charAC,
		HP:                 charHP,
		InitiativeModifier: charInit,
		Attacks:            attacks,
	})

	roster := tracker.Characters.Get()
	added := roster[len(roster)-1]
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", added.Name, added.ID)
	return nil
}

// parseAttack reads name:bonus:damage. Damage is kept verbatim.
func parseAttack(raw string) (entities.Attack, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return entities.Attack{}, errors.InvalidArgumentf("attack %q must be name:bonus:damage", raw)
	}

	bonus, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return entities.Attack{}, errors.InvalidArgumentf("attack %q has a non-numeric bonus", raw)
	}

	return entities.Attack{
		Name:   strings.TrimSpace(parts[0]),
		Bonus:  bonus,
		Damage: strings.TrimSpace(parts[2]),
	}, nil
}

// parseFieldValue converts command line text into the type the field holds
func parseFieldValue(field entities.CharacterField, raw string) (any, error) {
	switch field {
	case entities.FieldName, entities.FieldTeam:
		return raw, nil
	case entities.FieldIsPlayer:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.InvalidArgumentf("%s expects true or false, got %q", field, raw)
		}
		return v, nil
	case entities.FieldAC, entities.FieldHP, entities.FieldInitiativeModifier:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.InvalidArgumentf("%s expects a whole number, got %q", field, raw)
		}
		return v, nil
	case entities.FieldAttacks:
		var attacks []entities.Attack
		if err := json.Unmarshal([]byte(raw), &attacks); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "attacks must be a JSON array")
		}
		return attacks, nil
	default:
		return nil, errors.InvalidArgumentf("unknown character field %q", field)
	}
}

func printCharacters(w io.Writer, roster []entities.Character) {
	if len(roster) == 0 {
		fmt.Fprintln(w, "No characters")
		return
	}

	fmt.Fprintf(w, "%-24s %-20s %-5s %-6s %3s %4s %5s  %s\n",
		"ID", "NAME", "TEAM", "TYPE", "AC", "HP", "INIT", "ATTACKS")
	for _, c := range roster {
		kind := "player"
		if c.IsNPC() {
			kind = "npc"
		}

		attacks := make([]string, len(c.Attacks))
		for i, a := range c.Attacks {
			attacks[i] = fmt.Sprintf("%s %+d (%s)", a.Name, a.Bonus, a.Damage)
		}

		fmt.Fprintf(w, "%-24s %-20s %s %-6s %3d %4d %+5d  %s\n",
			c.ID, c.Name, teamText(c.Team, fmt.Sprintf("%-5s", c.Team)), kind,
			c.AC, c.HP, c.InitiativeModifier, strings.Join(attacks, ", "))
	}
}
