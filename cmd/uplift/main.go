package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	uplift "github.com/uplift-labs/uplift/pkg"
	pkgdb "github.com/uplift-labs/uplift/pkg/db"
)

var rootCmd = &cobra.Command{
	Use:     "uplift",
	Short:   "A local-first affirmation companion with daily picks, favorites and likes.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", uplift.Version),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for uplift.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(uplift completion bash)

  Bash (persist):
    $ uplift completion bash > /etc/bash_completion.d/uplift

  Zsh:
    $ uplift completion zsh > "${fpath[1]}/_uplift"

  Fish:
    $ uplift completion fish | source
    $ uplift completion fish > ~/.config/fish/completions/uplift.fish

  PowerShell:
    PS> uplift completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of uplift",
	Long:  `All software has versions. This is uplift's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(uplift.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the uplift database",
	Long:  `Provides commands for managing the uplift SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the uplift database schema to the latest version for the appdatadb component",
	Long: `Connects to the SQLite database at the specified path (provided with the --db flag) and applies any necessary
schema migrations to bring the appdatadb component up to the current application schema version.
If the database does not exist or is uninitialized for this component, it will be created
and initialized with the latest schema for the appdatadb component.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return errors.New("database path is required")
		}

		fmt.Printf("Attempting to upgrade appdatadb component in database at: %s (WAL: %t, Sync: %s)\n", dbPath, walMode, syncMode)

		dbConn, err := pkgdb.OpenDBConnection(dbPath, walMode, syncMode)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return pkgdb.UpgradeDB(dbConn, dbPath, pkgdb.TargetSchemaVersion)
	},
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (uses system-specific default if not provided)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", true, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to a catalog JSON file (uses the embedded catalog if not provided)")

	dbUpgradeCmd.MarkFlagRequired("db")
	dbCmd.AddCommand(dbUpgradeCmd)

	initAffirmationsCmd()
	initFavoritesCmd()
	initSettingsCmd()
	initTodayCmd()
	initDataCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd,
		affirmationsCmd, favoritesCmd, likeCmd, settingsCmd,
		todayCmd, recommendCmd, dataCmd, mcpCmd, serveCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
