package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

var errOrphansFound = errors.New("orphaned records found")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Look for fish and logs whose tank no longer exists",
	Long: `Scan the store for fish and maintenance logs that point at a missing tank.
These are left behind when a tank deletion is interrupted on a backend without
transactions. Records that could not be decoded are reported as well.

Nothing is repaired. The command exits non-zero when orphans are found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		orphans, err := s.keeper.Orphans(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to scan for orphans: %w", err)
		}

		for _, c := range storage.Collections {
			if n := s.metrics.MalformedCount(string(c)); n > 0 {
				fmt.Printf("Skipped %g malformed %s records.\n", n, c)
			}
		}

		if orphans.Empty() {
			fmt.Printf("No orphans in %s.\n", s.name)
			return nil
		}
		if len(orphans.Fish) > 0 {
			fmt.Printf("Orphaned fish (%d):\n", len(orphans.Fish))
			for _, f := range orphans.Fish {
				printFishRow(f)
			}
		}
		if len(orphans.Logs) > 0 {
			fmt.Printf("Orphaned maintenance logs (%d):\n", len(orphans.Logs))
			for _, l := range orphans.Logs {
				printLogRow(l)
			}
		}
		cmd.SilenceUsage = true
		return errOrphansFound
	},
}
