package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/services/doctor"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor [keys...]",
	Short: "Check stored data for corruption",
	Long: `Doctor reads the stored characters, vehicles and settings and reports
anything the tracker would discard on load. With --fix, malformed keys are
reset to empty defaults and duplicate ids are dropped.`,
	ValidArgs: doctor.KnownKeys(),
	Args:      cobra.OnlyValidArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := doctor.NewService(&doctor.Config{Repository: tracker.Repository})
		if err != nil {
			return err
		}
		return runDoctor(cmd.Context(), svc, args, doctorFix, cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "rewrite broken keys")
}

func runDoctor(ctx context.Context, svc doctor.Service, keys []string, fix bool, w io.Writer) error {
	check, err := svc.Check(ctx, &doctor.CheckInput{Keys: keys})
	if err != nil {
		return err
	}

	for _, r := range check.Reports {
		switch r.Status {
		case doctor.StatusOK:
			fmt.Fprintf(w, "✓ %-10s %d records, %d bytes\n", r.Key, r.Count, r.Bytes)
		case doctor.StatusMissing:
			fmt.Fprintf(w, "- %-10s not stored yet\n", r.Key)
		default:
			fmt.Fprintf(w, "✗ %-10s %s: %s\n", r.Key, r.Status, r.Detail)
		}
	}

	if check.Healthy() {
		fmt.Fprintln(w, "\nNo problems found")
		return nil
	}
	if !fix {
		return errors.FailedPrecondition("stored data needs repair; run again with --fix")
	}

	repaired, err := svc.Repair(ctx, &doctor.RepairInput{Keys: keys})
	if err != nil {
		return err
	}
	for _, r := range repaired.Repaired {
		fmt.Fprintf(w, "Repaired %s\n", r.Key)
	}
	return nil
}
