package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

const tankRecentLogs = 5

var tanksCmd = &cobra.Command{
	Use:   "tanks",
	Short: "Manage tanks",
	Long:  `Create, list, update, and delete tanks, and record their water parameters.`,
}

var listTanksCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tanks",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		all, err := s.keeper.Tanks.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tanks: %w", err)
		}
		if len(all) == 0 {
			fmt.Println("No tanks found.")
			return nil
		}
		fish, err := s.keeper.Fish.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list fish: %w", err)
		}
		counts := make(map[string]int)
		for _, f := range fish {
			counts[f.TankID.String()]++
		}

		fmt.Println("ID | Name | Type | Gallons | Location | Fish")
		printSeparator()
		for _, t := range all {
			printTankRow(t, counts[t.ID.String()])
		}
		return nil
	},
}

var getTankCmd = &cobra.Command{
	Use:   "get <tank-id>",
	Short: "Show a tank with its fish and recent maintenance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("tank", args[0])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		tank, ok, err := s.keeper.Tanks.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get tank: %w", err)
		}
		if !ok {
			return fmt.Errorf("tank not found: %s", id)
		}

		fmt.Printf("ID: %s\n", tank.ID)
		fmt.Printf("Name: %s\n", tank.Name)
		fmt.Printf("Type: %s\n", tank.TankType)
		fmt.Printf("Size: %g gallons\n", tank.SizeGallons)
		fmt.Printf("Location: %s\n", tank.Location)
		fmt.Printf("Equipment: %s\n", strings.Join(tank.Equipment, ", "))
		if tank.CurrentParameters != nil {
			fmt.Printf("Water: %s\n", tank.CurrentParameters)
		} else {
			fmt.Println("Water: not tested")
		}

		fish, err := s.keeper.Fish.GetByTank(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list fish: %w", err)
		}
		fmt.Printf("\nFish (%d):\n", len(fish))
		for _, f := range fish {
			fmt.Printf("  %s\n", f)
		}

		logs, err := s.keeper.Maintenance.GetByTank(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list maintenance: %w", err)
		}
		if len(logs) > tankRecentLogs {
			logs = logs[:tankRecentLogs]
		}
		fmt.Println("\nRecent maintenance:")
		for _, l := range logs {
			fmt.Printf("  %s\n", l)
		}
		return nil
	},
}

var createTankCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new tank",
	Long:  `Create a tank with a name, a size in gallons and a type (freshwater, saltwater, brackish).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		size, _ := cmd.Flags().GetFloat64("size")
		tankType, _ := cmd.Flags().GetString("type")
		location, _ := cmd.Flags().GetString("location")
		equipment, _ := cmd.Flags().GetString("equipment")

		tank, err := tanks.NewTank(tanks.TankInput{
			Name:        name,
			SizeGallons: size,
			TankType:    tankType,
			Location:    location,
			Equipment:   splitList(equipment),
		})
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.keeper.Tanks.Add(cmd.Context(), tank); err != nil {
			return fmt.Errorf("failed to create tank: %w", err)
		}
		fmt.Printf("Tank created successfully: %s (ID: %s)\n", tank, tank.ID)
		return nil
	},
}

var updateTankCmd = &cobra.Command{
	Use:   "update <tank-id>",
	Short: "Update a tank",
	Long:  `Update the fields given as flags. Fields left out keep their value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("tank", args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("name") && !flags.Changed("size") && !flags.Changed("type") &&
			!flags.Changed("location") && !flags.Changed("equipment") {
			return errors.New("nothing to update")
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		tank, ok, err := s.keeper.Tanks.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get tank: %w", err)
		}
		if !ok {
			return fmt.Errorf("tank not found: %s", id)
		}

		in := tank.Input()
		if flags.Changed("name") {
			in.Name, _ = flags.GetString("name")
		}
		if flags.Changed("size") {
			in.SizeGallons, _ = flags.GetFloat64("size")
		}
		if flags.Changed("type") {
			in.TankType, _ = flags.GetString("type")
		}
		if flags.Changed("location") {
			in.Location, _ = flags.GetString("location")
		}
		if flags.Changed("equipment") {
			equipment, _ := flags.GetString("equipment")
			in.Equipment = splitList(equipment)
		}

		updated, err := tank.With(in)
		if err != nil {
			return err
		}
		if _, err := s.keeper.Tanks.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update tank: %w", err)
		}
		fmt.Printf("Tank updated successfully: %s\n", updated)
		return nil
	},
}

var deleteTankCmd = &cobra.Command{
	Use:   "delete <tank-id>",
	Short: "Delete a tank with its fish and maintenance logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("tank", args[0])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		res, ok, err := s.keeper.DeleteTank(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete tank: %w", err)
		}
		if !ok {
			return fmt.Errorf("tank not found: %s", id)
		}
		fmt.Printf("Tank %s deleted with %d fish and %d maintenance logs.\n", id, res.FishRemoved, res.LogsRemoved)
		return nil
	},
}

var tankParamsCmd = &cobra.Command{
	Use:   "params <tank-id>",
	Short: "Record a water test for a tank",
	Long: `Log a water test and make it the tank's current water parameters.
Only the measurements given as flags are stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("tank", args[0])
		if err != nil {
			return err
		}

		params := tanks.NewWaterParameters(time.Now())
		flags := cmd.Flags()
		measure := func(name string) *float64 {
			if !flags.Changed(name) {
				return nil
			}
			v, _ := flags.GetFloat64(name)
			return &v
		}
		params.Temperature = measure("temperature")
		params.PH = measure("ph")
		params.Ammonia = measure("ammonia")
		params.Nitrite = measure("nitrite")
		params.Nitrate = measure("nitrate")
		params.Salinity = measure("salinity")
		notes, _ := flags.GetString("notes")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		log, ok, err := s.keeper.RecordWaterTest(cmd.Context(), id, params, notes)
		if err != nil {
			return fmt.Errorf("failed to record water test: %w", err)
		}
		if !ok {
			return fmt.Errorf("tank not found: %s", id)
		}
		fmt.Printf("Water test recorded (log ID: %s)\n", log.ID)
		fmt.Printf("Parameters: %s\n", params)
		return nil
	},
}

func initTanksCmd() {
	createTankCmd.Flags().String("name", "", "Name of the tank (required)")
	createTankCmd.Flags().Float64("size", 0, "Size in gallons (required)")
	createTankCmd.Flags().String("type", "freshwater", "Tank type (freshwater, saltwater, brackish)")
	createTankCmd.Flags().String("location", "", "Where the tank stands")
	createTankCmd.Flags().String("equipment", "", "Comma-separated list of equipment")
	createTankCmd.MarkFlagRequired("name")
	createTankCmd.MarkFlagRequired("size")

	updateTankCmd.Flags().String("name", "", "New name")
	updateTankCmd.Flags().Float64("size", 0, "New size in gallons")
	updateTankCmd.Flags().String("type", "", "New tank type (freshwater, saltwater, brackish)")
	updateTankCmd.Flags().String("location", "", "New location")
	updateTankCmd.Flags().String("equipment", "", "Comma-separated list replacing the equipment")

	tankParamsCmd.Flags().Float64("temperature", 0, "Temperature in Fahrenheit")
	tankParamsCmd.Flags().Float64("ph", 0, "pH")
	tankParamsCmd.Flags().Float64("ammonia", 0, "Ammonia in ppm")
	tankParamsCmd.Flags().Float64("nitrite", 0, "Nitrite in ppm")
	tankParamsCmd.Flags().Float64("nitrate", 0, "Nitrate in ppm")
	tankParamsCmd.Flags().Float64("salinity", 0, "Salinity in ppt")
	tankParamsCmd.Flags().String("notes", "", "Notes for the maintenance log")

	tanksCmd.AddCommand(listTanksCmd, getTankCmd, createTankCmd, updateTankCmd, deleteTankCmd, tankParamsCmd)
}
