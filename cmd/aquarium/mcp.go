package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/aquarium/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Aquarium MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes tanks, fish,
maintenance and the summary report as MCP tools via STDIO.

The storage flags work as for every other command. Without --data-dir or --db
a system-specific default location is used:
- Windows: %USERPROFILE%\AppData\Roaming\aquarium
- macOS: ~/Library/Application Support/aquarium
- Linux: ~/.local/share/aquarium

Example (Server Mode):
  aquarium mcp
  aquarium mcp --backend sqlite --db aquarium.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		srv := mcp.NewAquariumMCPServer(s.keeper)

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Aquarium MCP server started. Store: %s\n", s.name)
		fmt.Fprintln(os.Stderr, "Available tools: list_tanks, get_tank, create_tank, delete_tank, list_fish, add_fish, update_fish_health, move_fish, log_maintenance, record_water_test, list_maintenance, water_history, summary")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		// Run the server (blocks until stdio closes).
		return srv.Start()
	},
}
