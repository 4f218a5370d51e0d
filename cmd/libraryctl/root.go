package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/library-borrowing/pkg/logger"
	"github.com/Astemirdum/library-borrowing/pkg/postgres"
)

type rootOptions struct {
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Administer the library borrowing service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !os.IsNotExist(err) {
				return errors.Wrap(err, "load env file")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newMemberCmd(opts),
		newEventsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	level := zapcore.InfoLevel
	if o.verbose {
		level = zapcore.DebugLevel
	}
	return logger.NewLogger(logger.Log{LogLevel: level}, "libraryctl")
}

func (o *rootOptions) pool(ctx context.Context) (*pgxpool.Pool, error) {
	var cfg postgres.DB
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "db config")
	}
	return postgres.NewPool(ctx, cfg.DSN(), cfg.MaxConns, cfg.MaxConnLifetime)
}
