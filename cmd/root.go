package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/config"
	"github.com/kakomon/kakomon/internal/logger"
	"github.com/kakomon/kakomon/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "kakomon",
	Short: "Past-exam study tracker",
	Long:  "Kakomon tracks study passes over past-exam question sets and lets you retry the questions you missed or tagged.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides "+config.EnvDB+" env var)")
	rootCmd.PersistentFlags().String("user", "", "Learner id for local commands (overrides "+config.EnvUser+" env var)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome banner")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then KAKOMON_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the store selected by resolveDBPath.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// resolveUser returns the --user flag, KAKOMON_USER or the OS account.
func resolveUser(cmd *cobra.Command) (string, error) {
	flag, _ := cmd.Flags().GetString("user")
	return config.ResolveUser(flag)
}

// localLogger builds the logger for local commands. Without KAKOMON_LOG_FILE
// output is discarded so it never mixes with command output.
func localLogger() (*logger.Logger, error) {
	cfg := config.LoadLogging()
	if cfg.File == "" {
		return logger.Nop(), nil
	}
	return logger.New(logger.Options{Mode: cfg.Mode, OutputPath: cfg.File, HashSalt: cfg.Salt})
}

// localEnv bundles what most local subcommands need.
type localEnv struct {
	store  *store.Store
	userID string
	log    *logger.Logger
}

func (e *localEnv) Close() {
	e.log.Sync()
	e.store.Close()
}

func openLocal(cmd *cobra.Command) (*localEnv, error) {
	userID, err := resolveUser(cmd)
	if err != nil {
		return nil, err
	}
	log, err := localLogger()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	if err := st.UserRepo().Ensure(cmd.Context(), store.User{ID: userID}); err != nil {
		st.Close()
		return nil, err
	}
	return &localEnv{store: st, userID: userID, log: log}, nil
}
