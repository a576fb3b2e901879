package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tangocho/internal/config"
	"github.com/abhisek/tangocho/internal/logger"
	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/selector"
	"github.com/abhisek/tangocho/internal/session"
	"github.com/abhisek/tangocho/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tangocho",
	Short: "Japanese/English vocabulary drills",
	Long:  "Tangocho (単語帳) is a terminal vocabulary trainer that drills Japanese/English words in sets of 100.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TANGOCHO_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, toml or json)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(setsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (TANGOCHO_DB or config file), then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads config and opens the word store it points at.
func openStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return st, cfg, nil
}

// newLogger writes to the configured log file, the XDG state file by
// default, or stderr when LogFile is "-".
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	path := cfg.LogFile
	switch path {
	case "-":
		path = ""
	case "":
		p, err := logger.DefaultLogPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return logger.New(cfg.LogMode, cfg.LogLevel, path)
}

func newEngine(st *store.Store, cfg *config.Config, log *logger.Logger) *session.Engine {
	mode := session.WriteBatch
	if cfg.Immediate() {
		mode = session.WriteImmediate
	}
	return session.NewEngine(session.Options{
		Words:    st.WordRepo(),
		Events:   st.EventRepo(),
		Logger:   log,
		Mode:     mode,
		PageSize: cfg.PageSize,
		Timeout:  cfg.DBTimeout,
	})
}

// defaultSessionConfig is the configure screen's starting point.
func defaultSessionConfig(cfg *config.Config) session.Config {
	filter, err := selector.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		filter = selector.All
	}
	return session.Config{Filter: filter, Count: cfg.DefaultCount, Direction: mastery.Recall}
}
