package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nalanda-edu/nalanda/internal/config"
	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/store"
	"github.com/nalanda-edu/nalanda/internal/wallet"
)

var rootCmd = &cobra.Command{
	Use:           "nalanda",
	Short:         "Answer grading and reward economy for worksheets",
	Long:          "Nalanda grades numerical answers with unit conversion, prices worksheets and settles rewards into learner wallets.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite file or Postgres URL (overrides NALANDA_DB env var)")
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver: sqlite or postgres (overrides NALANDA_DB_DRIVER)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides NALANDA_LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of a styled report")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(costCmd)
	rootCmd.AddCommand(rewardCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.FromEnv()
	if d, _ := cmd.Flags().GetString("db-driver"); d != "" {
		cfg.DB.Driver = d
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDSN returns the configured DSN, falling back to the default SQLite
// path.
func resolveDSN(cfg config.Config, driver store.Driver) (string, error) {
	if cfg.DB.DSN == "" {
		return store.DefaultDBPath()
	}
	if driver == store.SQLite && !strings.HasPrefix(cfg.DB.DSN, "file:") {
		return cfg.DB.DSN, store.EnsureDir(cfg.DB.DSN)
	}
	return cfg.DB.DSN, nil
}

// env is what a command needs to reach the wallet service.
type env struct {
	cfg     config.Config
	log     *slog.Logger
	store   *store.Store
	wallets *wallet.Service
}

func (e *env) Close() error {
	return e.store.Close()
}

// openEnv loads the configuration, opens the store and builds the service.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger(cmd.ErrOrStderr())

	driver, err := store.ParseDriver(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := resolveDSN(cfg, driver)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("database opened", "driver", driver)

	return &env{
		cfg:     cfg,
		log:     log,
		store:   s,
		wallets: wallet.NewService(store.WithRetry(s.WalletRepo(), store.DefaultRetryConfig()), s.SettingsRepo(), log),
	}, nil
}

// loadBundle reads a bundle from path, or from stdin when path is "-".
func loadBundle(cmd *cobra.Command, path string) (*content.Bundle, error) {
	if path == "-" {
		return content.DecodeBundle(cmd.InOrStdin())
	}
	return content.LoadBundle(path)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
