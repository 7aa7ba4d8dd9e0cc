package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uplift-labs/uplift/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Uplift MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the affirmation
catalog, daily special, favorites, likes and data export as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\uplift\uplift.db
- macOS: ~/Library/Application Support/uplift/uplift.db
- Linux: ~/.local/share/uplift/uplift.db

Example:
  uplift mcp
  uplift mcp --db uplift.db
  uplift mcp --catalog /path/to/catalog.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewUpliftMCPServer(dbPath, catalogPath, nil)
		if err != nil {
			return err
		}
		defer srv.Close()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Uplift MCP server started. DB: %s\n", srv.DBPath)
		fmt.Fprintln(os.Stderr, "Available tools: ping, get_daily_affirmation, get_recommended_affirmation, get_random_affirmation, search_affirmations, list_affirmations, add_affirmation, remove_affirmation, toggle_like, add_favorite, remove_favorite, list_favorites, get_category_stats, export_data")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		// Run the server (blocks until stdio closes).
		return srv.Start()
	},
}
