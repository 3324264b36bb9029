// Package commands implements the stackit command-line interface.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/config"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
	"github.com/chiragbiradar/StackIt-odoo/internal/services"
	"github.com/chiragbiradar/StackIt-odoo/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X ...commands.version=...".
var version = "dev"

// globalFlags override the corresponding environment settings when set.
type globalFlags struct {
	envFiles []string
	driver   string
	dsn      string
	jsonOut  bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	gf := &globalFlags{}
	root := &cobra.Command{
		Use:   "stackit",
		Short: "StackIt derived-statistics propagator",
		Long: `stackit keeps the derived counters of a Q&A forum (reputation, vote scores,
answer counts, acceptance flags, tag usage) consistent with the facts they are
computed from, and checks that they still are.

Configuration comes from the environment (and optional .env files); the
--db-* flags override DB_DRIVER and DB_DSN/DB_PATH.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringSliceVar(&gf.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	pf.StringVar(&gf.driver, "db-driver", "", "database driver: sqlite, postgres or mysql")
	pf.StringVar(&gf.dsn, "db-dsn", "", "database DSN (file path for sqlite)")
	pf.BoolVar(&gf.jsonOut, "json", false, "machine-readable JSON output")

	root.AddCommand(
		newServeCmd(gf),
		newMigrateCmd(gf),
		newVerifyCmd(gf),
		newRepairCmd(gf),
		newSeedCmd(gf),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the process state shared by every subcommand.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	db       *gorm.DB
	logClose io.Closer
}

// openApp loads configuration, builds the logger and connects to the store.
func openApp(gf *globalFlags) (*app, error) {
	if err := config.LoadDotEnv(gf.envFiles...); err != nil {
		return nil, err
	}
	if gf.driver != "" {
		os.Setenv("DB_DRIVER", gf.driver)
	}
	if gf.dsn != "" {
		os.Setenv("DB_DSN", gf.dsn)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	logger, closer := sysutil.NewLogger(cfg, os.Stderr)
	log.Logger = logger

	// For sqlite an explicit DSN wins over DB_PATH.
	dsn := cfg.DB.DSN
	if cfg.DB.Driver == repo.DriverSQLite {
		dsn = sysutil.FirstNonEmpty(cfg.DB.DSN, cfg.DB.Path)
	}
	db, err := repo.Open(cfg.DB.Driver, dsn)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	if cfg.DB.Trace {
		if err := repo.EnableTracing(db); err != nil {
			logger.Warn().Err(err).Msg("gorm tracing plugin not installed")
		}
	}
	logger.Debug().Str("driver", cfg.DB.Driver).Bool("row_locks", repo.SupportsRowLocks(db)).Msg("database opened")
	return &app{cfg: cfg, log: logger, db: db, logClose: closer}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logClose.Close()
}

// retryBound maps TX_MAX_RETRIES onto the propagator's setting, where zero
// means "use the default" and a negative value disables retries.
func retryBound(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

func (a *app) propagator() *services.Propagator {
	return services.NewPropagator(a.db, &a.log, retryBound(a.cfg.Propagation.MaxRetries))
}

func (a *app) verifier() *services.Verifier {
	return &services.Verifier{DB: a.db, Log: &a.log, MaxRetries: retryBound(a.cfg.Propagation.MaxRetries)}
}
