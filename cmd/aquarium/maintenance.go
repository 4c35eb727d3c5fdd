package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

var (
	activityFlag string
	limitFlag    int
)

func activityNames() []string {
	names := make([]string, len(tanks.ActivityTypes))
	for i, a := range tanks.ActivityTypes {
		names[i] = string(a)
	}
	return names
}

var maintenanceCmd = &cobra.Command{
	Use:     "maintenance",
	Aliases: []string{"logs"},
	Short:   "Log and review tank maintenance",
	Long:    `Record maintenance activities and browse the history, newest first.`,
}

var listMaintenanceCmd = &cobra.Command{
	Use:   "list",
	Short: "List maintenance logs, optionally by tank and activity type",
	RunE: func(cmd *cobra.Command, args []string) error {
		var tankID *uuid.UUID
		if tankIDFlag != "" {
			id, err := parseID("tank", tankIDFlag)
			if err != nil {
				return err
			}
			tankID = &id
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		var logs []tanks.MaintenanceLog
		switch {
		case activityFlag != "":
			activity, err := tanks.ParseActivityType(activityFlag)
			if err != nil {
				return err
			}
			logs, err = s.keeper.Maintenance.GetByActivityType(ctx, activity, tankID)
			if err != nil {
				return fmt.Errorf("failed to list maintenance: %w", err)
			}
		case tankID != nil:
			logs, err = s.keeper.Maintenance.GetByTank(ctx, *tankID)
		default:
			logs, err = s.keeper.Maintenance.GetAll(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to list maintenance: %w", err)
		}
		printLogs(logs)
		return nil
	},
}

var recentMaintenanceCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent maintenance across all tanks",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		logs, err := s.keeper.Maintenance.GetRecent(cmd.Context(), limitFlag)
		if err != nil {
			return fmt.Errorf("failed to list maintenance: %w", err)
		}
		printLogs(logs)
		return nil
	},
}

var logMaintenanceCmd = &cobra.Command{
	Use:   fmt.Sprintf("log <%s>", strings.Join(activityNames(), "|")),
	Short: "Log a maintenance activity on a tank",
	Long: `Log a maintenance activity on a tank.

A water change may carry --percentage, which is prefixed to the description.
To store test readings with a water test, use "aquarium tanks params".`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: activityNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		tankID, err := parseID("tank", tankIDFlag)
		if err != nil {
			return err
		}
		activity, err := tanks.ParseActivityType(args[0])
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		percentage, _ := cmd.Flags().GetInt("percentage")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		log, ok, err := s.keeper.LogActivity(cmd.Context(), tankID, activity, description, percentage)
		if err != nil {
			return fmt.Errorf("failed to log maintenance: %w", err)
		}
		if !ok {
			return fmt.Errorf("tank not found: %s", tankID)
		}
		fmt.Printf("Logged %s (ID: %s)\n", log, log.ID)
		return nil
	},
}

var waterHistoryCmd = &cobra.Command{
	Use:   "history <tank-id>",
	Short: "Show the water test history of a tank",
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

		history, err := s.keeper.Maintenance.GetWaterParamHistory(cmd.Context(), id, limitFlag)
		if err != nil {
			return fmt.Errorf("failed to load water history: %w", err)
		}
		if len(history) == 0 {
			fmt.Println("No water tests found.")
			return nil
		}
		for _, p := range history {
			fmt.Println(p)
		}
		return nil
	},
}

func printLogs(logs []tanks.MaintenanceLog) {
	if len(logs) == 0 {
		fmt.Println("No maintenance logs found.")
		return
	}
	fmt.Println("Date | Activity | Tank | Description")
	printSeparator()
	for _, l := range logs {
		printLogRow(l)
	}
}

func initMaintenanceCmd() {
	listMaintenanceCmd.Flags().StringVar(&tankIDFlag, "tank-id", "", "Only list logs of this tank")
	listMaintenanceCmd.Flags().StringVar(&activityFlag, "type", "", fmt.Sprintf("Only list this activity type (%s)", strings.Join(activityNames(), ", ")))

	recentMaintenanceCmd.Flags().IntVar(&limitFlag, "limit", tanks.DefaultHistoryLimit, "Number of logs to show")

	logMaintenanceCmd.Flags().StringVar(&tankIDFlag, "tank-id", "", "ID of the tank (required)")
	logMaintenanceCmd.Flags().String("description", "", "What was done")
	logMaintenanceCmd.Flags().Int("percentage", 0, "Share of the water changed, water_change only")
	logMaintenanceCmd.MarkFlagRequired("tank-id")

	waterHistoryCmd.Flags().IntVar(&limitFlag, "limit", tanks.DefaultHistoryLimit, "Number of tests to show")

	maintenanceCmd.AddCommand(listMaintenanceCmd, recentMaintenanceCmd, logMaintenanceCmd, waterHistoryCmd)
}
