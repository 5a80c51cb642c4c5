package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/strengthscope/internal/repository"
	"github.com/alexanderramin/strengthscope/internal/server"
)

const (
	pruneInterval   = time.Hour
	narrativeMaxAge = 30 * 24 * time.Hour
)

func newServeCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.load(cmd)
			if err != nil {
				return err
			}

			srv, err := server.New(app.Assessments, serverConfig(app),
				server.WithMetrics(app.Metrics, app.Registry),
				server.WithLogger(app.Logger),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx)
			})
			if app.Narratives != nil {
				g.Go(func() error {
					pruneNarratives(gctx, app.Narratives, app.Logger, pruneInterval, narrativeMaxAge)
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

// serverConfig maps the loaded configuration onto the HTTP server.
func serverConfig(app *App) server.Config {
	cfg := server.DefaultConfig()
	cfg.Addr = app.Config.Server.Addr
	cfg.CORSOrigins = app.Config.Server.CORSOrigins
	cfg.FontPath = app.Config.Font
	if app.Config.LLM.Enabled {
		cfg.NarrativeTimeout = app.Config.NarrativeTimeout()
	}
	return cfg
}

// pruneNarratives drops stale cached narratives every interval until ctx
// ends. Failures are logged and retried on the next tick.
func pruneNarratives(ctx context.Context, repo repository.NarrativeRepo, logger *slog.Logger, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.Prune(ctx, maxAge)
			if err != nil {
				logger.WarnContext(ctx, "narrative cache prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.InfoContext(ctx, "narrative cache pruned", "removed", n)
			}
		}
	}
}
