package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/chiragbiradar/StackIt-odoo/internal/config"
	httpapi "github.com/chiragbiradar/StackIt-odoo/internal/http"
	"github.com/chiragbiradar/StackIt-odoo/internal/observability"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
	"github.com/chiragbiradar/StackIt-odoo/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(gf *globalFlags) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagnostics API and the background consistency job",
		Long: `Serve the read-only diagnostics API (health, metrics, aggregate snapshots,
consistency report). When REPAIR_INTERVAL is set, a background job verifies
the aggregates on that interval and, with REPAIR_AUTOFIX, repairs drift.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(gf)
			if err != nil {
				return err
			}
			defer a.Close()
			if migrate {
				if err := repo.AutoMigrate(a.db); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations before serving")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownOTel, err := observability.SetupOTel(ctx, a.cfg.OTEL, version, observability.ResourceAttrs(a.cfg.DB)...)
	if err != nil {
		return err
	}

	gin.SetMode(a.cfg.GinMode)
	r := gin.New()
	v := a.verifier()
	httpapi.RegisterRoutes(r, httpapi.Deps{Stats: a.propagator(), Checker: v, Log: &a.log}, a.cfg)

	srv := newHTTPServer(a.cfg, r)

	job := &services.RepairJob{
		Verifier: v,
		Interval: a.cfg.Propagation.RepairInterval,
		AutoFix:  a.cfg.Propagation.RepairAutoFix,
	}
	jobDone := make(chan struct{})
	go func() {
		defer close(jobDone)
		job.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("driver", a.cfg.DB.Driver).
			Dur("repair_interval", job.Interval).Msg("diagnostics server listening")
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	<-jobDone
	if err := shutdownOTel(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("otel shutdown")
	}
	a.log.Info().Msg("server stopped")
	return serveErr
}

func newHTTPServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}
