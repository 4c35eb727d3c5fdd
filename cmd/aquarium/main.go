package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	aquarium "github.com/unowned-ai/aquarium/pkg"
	"github.com/unowned-ai/aquarium/pkg/config"
	pkgdb "github.com/unowned-ai/aquarium/pkg/db"
	"github.com/unowned-ai/aquarium/pkg/logger"
)

var (
	backendFlag     string
	dataDirFlag     string
	dbPath          string
	postgresDSN     string
	walMode         bool
	syncMode        string
	foreignKeysFlag bool
	logLevelFlag    string

	cfg       *config.Config
	appLogger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:     "aquarium",
	Short:   "Keep track of your tanks, the fish living in them and their maintenance.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", aquarium.Version),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// loadConfig reads the environment and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	c, err := config.New(func(c *config.Config) {
		if flags.Changed("backend") {
			c.Backend = config.Backend(backendFlag)
		}
		if flags.Changed("data-dir") {
			c.DataDir = dataDirFlag
		}
		if flags.Changed("db") {
			c.DBPath = dbPath
		}
		if flags.Changed("dsn") {
			c.PostgresDSN = postgresDSN
		}
		if flags.Changed("wal") {
			c.WAL = walMode
		}
		if flags.Changed("sync") {
			c.Sync = syncMode
		}
		if flags.Changed("foreign-keys") {
			c.ForeignKeys = foreignKeysFlag
		}
		if flags.Changed("log-level") {
			c.LogLevel = logLevelFlag
		}
	})
	if err != nil {
		return err
	}
	cfg = c

	appLogger = logger.New("aquarium", logger.ParseLevel(cfg.LogLevel))
	log.Logger = appLogger
	return nil
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for aquarium.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(aquarium completion bash)

  Bash (persist):
    $ aquarium completion bash > /etc/bash_completion.d/aquarium

  Zsh:
    $ aquarium completion zsh > "${fpath[1]}/_aquarium"

  Fish:
    $ aquarium completion fish | source
    $ aquarium completion fish > ~/.config/fish/completions/aquarium.fish

  PowerShell:
    PS> aquarium completion powershell | Out-String | Invoke-Expression`,
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
	Short: "Print the version number of aquarium",
	Long:  `All software has versions. This is aquarium's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(aquarium.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the aquarium database",
	Long:  `Provides commands for managing the SQLite or Postgres database behind the sql backends, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the aquarium database schema to the latest version for the tanksdb component",
	Long: `Connects to the configured database (SQLite at --db, or Postgres at --dsn) and applies any necessary
schema migrations to bring the tanksdb component up to the current application schema version.
If the database does not exist or is uninitialized for this component, it will be created
and initialized with the latest schema for the tanksdb component.

The file backend keeps plain JSON documents and has no schema to upgrade.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Backend == config.BackendFile {
			return errors.New("db upgrade needs --backend sqlite or --backend postgres")
		}

		dbConn, dialect, ident, err := openSQL()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		fmt.Printf("Attempting to upgrade tanksdb component in %s database at: %s\n", dialect, ident)
		if err := pkgdb.UpgradeDB(dbConn, dialect, ident, pkgdb.TargetSchemaVersion); err != nil {
			return err
		}
		fmt.Println("Database is up to date.")
		return nil
	},
}

func initCmd() {
	// Persistent flags override AQUARIUM_* environment variables and .env
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "file", "Storage backend (file, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory for the JSON documents of the file backend (uses system-specific default if not provided)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database file (default: <data-dir>/aquarium.db)")
	rootCmd.PersistentFlags().StringVar(&postgresDSN, "dsn", "", "Postgres connection string for the postgres backend")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", false, "Enable SQLite WAL (Write-Ahead Logging) mode (default: false)")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA) (default: FULL)")
	rootCmd.PersistentFlags().BoolVar(&foreignKeysFlag, "foreign-keys", false, "Enforce SQLite foreign keys between tanks, fish and logs")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level for diagnostics on stderr (debug, info, warn, error)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initTanksCmd()
	initFishCmd()
	initMaintenanceCmd()
	initReportCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, tanksCmd, fishCmd, maintenanceCmd, reportCmd, checkCmd, mcpCmd, tuiCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
