package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vbind"
	verrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/compiler"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/live"
	"github.com/vango-dev/vbind/pkg/metrics"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the template as a live page",
		Long: `Serve the template over HTTP. Every page load gets its own copy
of the data model; input and events travel over a websocket and the
affected nodes are patched in place.

Endpoints:
  /          the live page
  /ws        the session websocket
  /healthz   health check
  /metrics   Prometheus metrics (unless --metrics=false)

Examples:
  vbind serve -t page.html -d data.yaml
  vbind serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("metrics", true, "serve Prometheus metrics")

	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command) error {
	p, err := a.loadProject(ctx)
	if err != nil {
		return err
	}

	// Fail fast on templates that cannot compile.
	if _, err := p.instance(&dom.Updater{}, nil); err != nil {
		return verrors.Classify(err).WithSource(a.cfg.Template)
	}

	sc := a.cfg.Server
	var collector *metrics.Collector
	metricsPath := ""
	if sc.Metrics {
		collector = metrics.New()
		metricsPath = sc.MetricsPath
	}

	srv, err := live.New(live.Config{
		Factory: func(surface compiler.Surface) (*vbind.Instance, error) {
			return p.instance(surface, collector)
		},
		Title:       filepath.Base(a.cfg.Template),
		MetricsPath: metricsPath,
		Metrics:     collector,
		Logger:      a.logger.With("component", "live"),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              sc.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: sc.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		success(cmd.ErrOrStderr(), "Serving %s on %s", a.cfg.Template, sc.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return verrors.New("E100").Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down", "timeout", sc.ShutdownTimeout.String())
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
