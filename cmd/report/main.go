// Command report runs the COVID-19 trend report once: it fetches the CSSE
// source tables, prepares the merged dataset, writes charts to OUTPUT_DIR,
// and prints regression summaries to stdout.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/covid-trend-report/internal/adapter/http"
	"github.com/couchcryptid/covid-trend-report/internal/adapter/jhu"
	"github.com/couchcryptid/covid-trend-report/internal/config"
	"github.com/couchcryptid/covid-trend-report/internal/observability"
	"github.com/couchcryptid/covid-trend-report/internal/pipeline"
	"github.com/couchcryptid/covid-trend-report/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := jhu.NewClient(cfg, logger, metrics)
	generator := report.NewGenerator(cfg, logger, metrics)
	p := pipeline.New(fetcher, generator, cfg.Countries, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional metrics/health listener for the duration of the run.
	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
}
