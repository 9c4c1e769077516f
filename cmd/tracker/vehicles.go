package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

var (
	vehicleName   string
	vehicleAC     int
	vehicleMaxHP  int
	vehicleSpeed  int
	vehicleNotes  string
	vehiclePlayer bool
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Manage the vehicle roster",
}

var listVehiclesCmd = &cobra.Command{
	Use:   "list",
	Short: "List every vehicle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		printVehicles(cmd.OutOrStdout(), tracker.Vehicles.Get())
		return nil
	},
}

var addVehicleCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a vehicle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		id := tracker.Vehicles.Add(entities.Vehicle{
			Name:     vehicleName,
			AC:       vehicleAC,
			MaxHP:    vehicleMaxHP,
			Speed:    vehicleSpeed,
			Notes:    vehicleNotes,
			IsPlayer: vehiclePlayer,
		})
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", vehicleName, id)
		return nil
	},
}

var setVehicleCmd = &cobra.Command{
	Use:   "set [id]",
	Short: "Change the fields given as flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if _, ok := tracker.Vehicles.Find(id); !ok {
			return errors.NotFoundf("vehicle %s not found", id)
		}

		tracker.Vehicles.Update(id, vehiclePatchFromFlags(cmd))

		updated, _ := tracker.Vehicles.Find(id)
		printVehicles(cmd.OutOrStdout(), []entities.Vehicle{updated})
		return nil
	},
}

var removeVehicleCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a vehicle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, ok := tracker.Vehicles.Find(args[0])
		if !ok {
			return errors.NotFoundf("vehicle %s not found", args[0])
		}
		tracker.Vehicles.Remove(v.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", v.Name)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{addVehicleCmd, setVehicleCmd} {
		c.Flags().StringVar(&vehicleName, "name", "", "vehicle name")
		c.Flags().IntVar(&vehicleAC, "ac", 10, "armor class")
		c.Flags().IntVar(&vehicleMaxHP, "max-hp", 1, "maximum hit points")
		c.Flags().IntVar(&vehicleSpeed, "speed", 0, "speed in feet")
		c.Flags().StringVar(&vehicleNotes, "notes", "", "free-form notes")
		c.Flags().BoolVar(&vehiclePlayer, "player", false, "controlled by a player")
	}
	_ = addVehicleCmd.MarkFlagRequired("name")

	vehiclesCmd.AddCommand(listVehiclesCmd)
	vehiclesCmd.AddCommand(addVehicleCmd)
	vehiclesCmd.AddCommand(setVehicleCmd)
	vehiclesCmd.AddCommand(removeVehicleCmd)
}

// vehiclePatchFromFlags includes only the flags the user passed
func vehiclePatchFromFlags(cmd *cobra.Command) entities.VehiclePatch {
	flags := cmd.Flags()

	var patch entities.VehiclePatch
	if flags.Changed("name") {
		patch.Name = &vehicleName
	}
	if flags.Changed("ac") {
		patch.AC = &vehicleAC
	}
	if flags.Changed("max-hp") {
		patch.MaxHP = &vehicleMaxHP
	}
	if flags.Changed("speed") {
		patch.Speed = &vehicleSpeed
	}
	if flags.Changed("notes") {
		patch.Notes = &vehicleNotes
	}
	if flags.Changed("player") {
		patch.IsPlayer = &vehiclePlayer
	}
	return patch
}

func printVehicles(w io.Writer, vehicles []entities.Vehicle) {
	if len(vehicles) == 0 {
		fmt.Fprintln(w, "No vehicles")
		return
	}

	fmt.Fprintf(w, "%-36s %-20s %3s %6s %5s %-6s  %s\n",
		"ID", "NAME", "AC", "MAX HP", "SPEED", "TYPE", "NOTES")
	for _, v := range vehicles {
		kind := "npc"
		if v.IsPlayer {
			kind = "player"
		}
		fmt.Fprintf(w, "%-36s %-20s %3d %6d %5d %-6s  %s\n",
			v.ID, v.Name, v.AC, v.MaxHP, v.Speed, kind, v.Notes)
	}
}
