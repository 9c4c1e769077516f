package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change display settings",
}

var showSettingsCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "showDebugInfo: %t\n", tracker.Settings.Get().ShowDebugInfo)
		return nil
	},
}

var debugSettingsCmd = &cobra.Command{
	Use:       "debug [on|off]",
	Short:     "Toggle debug details in encounter output",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var show bool
		switch args[0] {
		case "on":
			show = true
		case "off":
			show = false
		default:
			return errors.InvalidArgumentf("expected on or off, got %q", args[0])
		}

		tracker.Settings.SetShowDebugInfo(show)
		fmt.Fprintf(cmd.OutOrStdout(), "showDebugInfo: %t\n", show)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(showSettingsCmd)
	settingsCmd.AddCommand(debugSettingsCmd)
}
