package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

var tankIDFlag string

var fishCmd = &cobra.Command{
	Use:   "fish",
	Short: "Manage fish",
	Long:  `Add, list, update, move, and remove the fish living in your tanks.`,
}

var listFishCmd = &cobra.Command{
	Use:   "list",
	Short: "List fish, optionally only those in one tank",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var fish []tanks.Fish
		if tankIDFlag != "" {
			tankID, err := parseID("tank", tankIDFlag)
			if err != nil {
				return err
			}
			fish, err = s.keeper.Fish.GetByTank(cmd.Context(), tankID)
			if err != nil {
				return fmt.Errorf("failed to list fish: %w", err)
			}
		} else {
			fish, err = s.keeper.Fish.GetAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list fish: %w", err)
			}
		}

		if len(fish) == 0 {
			fmt.Println("No fish found.")
			return nil
		}
		fmt.Println("ID | Name | Species | Tank | Added")
		printSeparator()
		for _, f := range fish {
			printFishRow(f)
		}
		return nil
	},
}

var getFishCmd = &cobra.Command{
	Use:   "get <fish-id>",
	Short: "Show a fish",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("fish", args[0])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		f, ok, err := s.keeper.Fish.GetByID(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get fish: %w", err)
		}
		if !ok {
			return fmt.Errorf("fish not found: %s", id)
		}

		fmt.Printf("ID: %s\n", f.ID)
		fmt.Printf("Name: %s\n", f.Name)
		fmt.Printf("Species: %s\n", f.Species)
		fmt.Printf("Tank: %s\n", f.TankID)
		fmt.Printf("Health: %s %s\n", f.HealthStatus.Icon(), f.HealthStatus)
		fmt.Printf("Added: %s\n", formatDate(&f.DateAdded))
		fmt.Printf("Born: %s\n", formatDate(f.BirthDate))
		fmt.Printf("Size: %s\n", deref(f.Size))
		fmt.Printf("Color: %s\n", deref(f.Color))
		fmt.Printf("Feeding: %s\n", deref(f.FeedingPreferences))
		fmt.Printf("Notes: %s\n", deref(f.Notes))
		return nil
	},
}

var addFishCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a fish to a tank",
	Long:  `Add a fish to an existing tank. The fish starts out healthy unless --health says otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tankID, err := parseID("tank", tankIDFlag)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		in := tanks.FishInput{TankID: tankID}
		in.Name, _ = flags.GetString("name")
		in.Species, _ = flags.GetString("species")
		in.HealthStatus, _ = flags.GetString("health")
		if err := applyFishDetails(cmd, &in); err != nil {
			return err
		}

		fish, err := tanks.NewFish(in)
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ok, err := s.keeper.AddFish(cmd.Context(), fish)
		if err != nil {
			return fmt.Errorf("failed to add fish: %w", err)
		}
		if !ok {
			return fmt.Errorf("tank not found: %s", tankID)
		}
		fmt.Printf("Fish added successfully: %s (ID: %s)\n", fish, fish.ID)
		return nil
	},
}

// applyFishDetails copies the optional descriptive flags that were set into in.
func applyFishDetails(cmd *cobra.Command, in *tanks.FishInput) error {
	flags := cmd.Flags()
	if flags.Changed("birth-date") {
		raw, _ := flags.GetString("birth-date")
		birth, err := parseDate(raw)
		if err != nil {
			return err
		}
		in.BirthDate = birth
	}
	for name, dst := range map[string]**string{
		"size":    &in.Size,
		"color":   &in.Color,
		"feeding": &in.FeedingPreferences,
		"notes":   &in.Notes,
	} {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = optString(v)
		}
	}
	return nil
}

var updateFishCmd = &cobra.Command{
	Use:   "update <fish-id>",
	Short: "Update a fish",
	Long:  `Update the fields given as flags. Fields left out keep their value. Use "fish move" to change tanks.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("fish", args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		changed := false
		for _, name := range []string{"name", "species", "health", "birth-date", "size", "color", "feeding", "notes"} {
			changed = changed || flags.Changed(name)
		}
		if !changed {
			return errors.New("nothing to update")
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		fish, ok, err := s.keeper.Fish.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get fish: %w", err)
		}
		if !ok {
			return fmt.Errorf("fish not found: %s", id)
		}

		in := fish.Input()
		if flags.Changed("name") {
			in.Name, _ = flags.GetString("name")
		}
		if flags.Changed("species") {
			in.Species, _ = flags.GetString("species")
		}
		if flags.Changed("health") {
			in.HealthStatus, _ = flags.GetString("health")
		}
		if err := applyFishDetails(cmd, &in); err != nil {
			return err
		}

		updated, err := fish.With(in)
		if err != nil {
			return err
		}
		if _, err := s.keeper.Fish.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update fish: %w", err)
		}
		fmt.Printf("Fish updated successfully: %s\n", updated)
		return nil
	},
}

var moveFishCmd = &cobra.Command{
	Use:   "move <fish-id> <tank-id>",
	Short: "Move a fish to another tank",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fishID, err := parseID("fish", args[0])
		if err != nil {
			return err
		}
		tankID, err := parseID("tank", args[1])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ok, err := s.keeper.MoveFish(cmd.Context(), fishID, tankID)
		if err != nil {
			return fmt.Errorf("failed to move fish: %w", err)
		}
		if !ok {
			return fmt.Errorf("fish %s or tank %s not found", fishID, tankID)
		}
		fmt.Printf("Fish %s moved to tank %s.\n", fishID, tankID)
		return nil
	},
}

var fishHealthCmd = &cobra.Command{
	Use:       "health <fish-id> <healthy|sick|recovering|deceased>",
	Short:     "Set the health status of a fish",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"healthy", "sick", "recovering", "deceased"},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("fish", args[0])
		if err != nil {
			return err
		}
		status, err := tanks.ParseHealthStatus(args[1])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ok, err := s.keeper.Fish.UpdateHealthStatus(cmd.Context(), id, status)
		if err != nil {
			return fmt.Errorf("failed to update health: %w", err)
		}
		if !ok {
			return fmt.Errorf("fish not found: %s", id)
		}
		fmt.Printf("Fish %s is now %s %s.\n", id, status.Icon(), status)
		return nil
	},
}

var deleteFishCmd = &cobra.Command{
	Use:   "delete <fish-id>",
	Short: "Remove a fish",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("fish", args[0])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ok, err := s.keeper.Fish.Delete(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete fish: %w", err)
		}
		if !ok {
			return fmt.Errorf("fish not found: %s", id)
		}
		fmt.Printf("Fish %s deleted.\n", id)
		return nil
	},
}

func addFishDetailFlags(cmd *cobra.Command) {
	cmd.Flags().String("birth-date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().String("size", "", "Size, free text")
	cmd.Flags().String("color", "", "Color")
	cmd.Flags().String("feeding", "", "Feeding preferences")
	cmd.Flags().String("notes", "", "Notes")
}

func initFishCmd() {
	listFishCmd.Flags().StringVar(&tankIDFlag, "tank-id", "", "Only list fish in this tank")

	addFishCmd.Flags().StringVar(&tankIDFlag, "tank-id", "", "ID of the tank the fish lives in (required)")
	addFishCmd.Flags().String("name", "", "Name of the fish (required)")
	addFishCmd.Flags().String("species", "", "Species (required)")
	addFishCmd.Flags().String("health", "", "Health status (healthy, sick, recovering, deceased)")
	addFishDetailFlags(addFishCmd)
	addFishCmd.MarkFlagRequired("tank-id")
	addFishCmd.MarkFlagRequired("name")
	addFishCmd.MarkFlagRequired("species")

	updateFishCmd.Flags().String("name", "", "New name")
	updateFishCmd.Flags().String("species", "", "New species")
	updateFishCmd.Flags().String("health", "", "New health status")
	addFishDetailFlags(updateFishCmd)

	fishCmd.AddCommand(listFishCmd, getFishCmd, addFishCmd, updateFishCmd, moveFishCmd, fishHealthCmd, deleteFishCmd)
}
