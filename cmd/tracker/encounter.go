package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/app"
	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	dicesvc "github.com/KirkDiggler/initiative-tracker/internal/orchestrators/dice"
	"github.com/KirkDiggler/initiative-tracker/internal/stores/encounter"
)

const sessionHelp = `Commands:
  start <name>                   start an encounter and roll for every NPC
  init <characterId> <roll>      record a player's d20 roll
  order                          print the turn order
  attack <characterId> <attack>  roll to hit and damage
  roll <notation>                roll dice, for example 2d6+3
  end                            end the encounter
  quit                           leave the session`

var encounterCmd = &cobra.Command{
	Use:   "encounter",
	Short: "Run an interactive encounter",
	Long: `Encounters are held in memory only, so they run inside an interactive
session that ends when you quit.

` + sessionHelp,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runSession(ctx, tracker, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runSession reads commands line by line until quit, EOF or ctx is done. A
// done ctx ends the session even while a read is blocked.
// Every change to the encounter is printed as it is published.
func runSession(ctx context.Context, a *app.App, in io.Reader, w io.Writer) error {
	unsubscribe := a.Encounter.Subscribe(func(state encounter.State) {
		printEncounter(w, a, state)
	})
	defer unsubscribe()

	fmt.Fprintln(w, "Type help for commands.")

	lines, readErr := scanLines(ctx, in)
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-lines:
			if !ok {
				return <-readErr
			}
			line = next
		}
		if ctx.Err() != nil {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "start":
			name := strings.TrimSpace(strings.Join(fields[1:], " "))
			if name == "" {
				fmt.Fprintln(w, "usage: start <name>")
				continue
			}
			if err := a.Encounter.StartEncounter(ctx, name); err != nil {
				fmt.Fprintf(w, "could not start encounter: %v\n", err)
			}

		case "init":
			if len(fields) != 3 {
				fmt.Fprintln(w, "usage: init <characterId> <roll>")
				continue
			}
			roll, err := strconv.Atoi(fields[2])
			if err != nil || roll < entities.MinInitiativeRoll || roll > entities.MaxInitiativeRoll {
				fmt.Fprintf(w, "roll must be a number from %d to %d\n",
					entities.MinInitiativeRoll, entities.MaxInitiativeRoll)
				continue
			}
			if a.Encounter.Current().IsNone() {
				fmt.Fprintln(w, "no active encounter")
				continue
			}
			a.Encounter.AddPlayerInitiative(fields[1], roll)

		case "order":
			printEncounter(w, a, a.Encounter.Current())

		case "roll":
			notation := strings.Join(fields[1:], "")
			out, err := a.Dice.Roll(ctx, &dicesvc.RollInput{Notation: notation})
			if err != nil {
				fmt.Fprintf(w, "could not roll: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "%s: %v %+d = %d\n", out.Notation, out.Dice, out.Modifier, out.Total)

		case "attack":
			if len(fields) < 3 {
				fmt.Fprintln(w, "usage: attack <characterId> <attack>")
				continue
			}
			out, err := a.Dice.RollAttack(ctx, &dicesvc.RollAttackInput{
				CharacterID: fields[1],
				AttackName:  strings.Join(fields[2:], " "),
			})
			if err != nil {
				fmt.Fprintf(w, "could not attack: %v\n", err)
				continue
			}
			printAttack(w, out)

		case "end":
			a.Encounter.EndEncounter()

		case "help", "?":
			fmt.Fprintln(w, sessionHelp)

		case "quit", "exit":
			return nil

		default:
			fmt.Fprintf(w, "unknown command %q, type help\n", fields[0])
		}
	}
}

// scanLines delivers lines from in on the returned channel until EOF or ctx
// is done, then closes it. The error channel holds the scanner's error once
// lines is closed.
func scanLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	return lines, readErr
}

func printEncounter(w io.Writer, a *app.App, state encounter.State) {
	enc, ok := state.Get()
	if !ok {
		fmt.Fprintln(w, "No active encounter")
		return
	}

	debug := a.Settings.Get().ShowDebugInfo
	header := titleStyle.Render("== " + enc.Name + " ==")
	if debug {
		header = titleStyle.Render("== "+enc.Name+" [") + mutedStyle.Render(enc.ID) + titleStyle.Render("] ==")
	}
	fmt.Fprintln(w, header)

	order := enc.TurnOrder()
	if len(order) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  waiting for initiative"))
	}
	for i, entry := range order {
		line := fmt.Sprintf("  %2d. %-20s %3d", i+1, a.Characters.Name(entry.CharacterID), entry.Total())
		if debug {
			line += mutedStyle.Render(fmt.Sprintf("  (d20 %d %+d, %s)", entry.Initiative, entry.Modifier, entry.CharacterID))
		}
		fmt.Fprintln(w, line)
	}

	if missing := playersWithoutInitiative(a, enc); len(missing) > 0 {
		fmt.Fprintln(w, warnStyle.Render("  waiting on: "+strings.Join(missing, ", ")))
	}
}

func printAttack(w io.Writer, out *dicesvc.RollAttackOutput) {
	fmt.Fprintf(w, "%s attacks with %s: %d to hit (d20 %d %+d)",
		out.Character.Name, out.Attack.Name, out.ToHit.Total, out.ToHit.Dice[0], out.ToHit.Modifier)
	if out.Critical {
		fmt.Fprint(w, " "+critStyle.Render("CRITICAL"))
	}
	fmt.Fprintf(w, ", %d damage %v\n", out.Damage.Total, out.Damage.Dice)
}

func playersWithoutInitiative(a *app.App, enc entities.Encounter) []string {
	var missing []string
	for _, c := range a.Characters.Get() {
		if c.IsNPC() {
			continue
		}
		if _, ok := enc.Find(c.ID); !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", c.Name, c.ID))
		}
	}
	return missing
}
