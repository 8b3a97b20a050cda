package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/config"
	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/internal/logging"
)

// rootCmd runs the API server when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "familyhub",
	Short: "Family membership, invitations and shared calendar API",
	RunE:  runServe,
	// Usage on every runtime error buries the actual failure.
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.Open(ctx, database.Options{
		Driver:          cfg.DatabaseDriver,
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database", zap.String("driver", db.Dialect().Name()))

	return cfg, logger, db, nil
}

func migrate(ctx context.Context, db *database.DB, logger *zap.Logger) error {
	applied, err := db.Migrate(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		logger.Info("database schema up to date")
		return nil
	}
	for _, name := range applied {
		logger.Info("applied migration", zap.String("file", name))
	}
	return nil
}
