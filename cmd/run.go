package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/app"
	"github.com/abhisek/brainkit/internal/screen"
)

// runApp builds the client and launches the TUI. Logs only go to the
// configured log file so they cannot corrupt the screen.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	noSplash, _ := cmd.Flags().GetBool("no-splash")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	var reg *prometheus.Registry
	if metricsAddr != "" {
		reg = prometheus.NewRegistry()
	}
	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}

	s, err := openSession(cmd, nil, registerer)
	if err != nil {
		return err
	}
	defer s.Close()

	if reg != nil {
		stopMetrics, err := serveMetrics(metricsAddr, reg, s.logger)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	env := screen.Env{
		Ctx:         ctx,
		API:         s.client,
		UserID:      s.cfg.UserID,
		Logger:      s.logger,
		Transcript:  s.transcript(),
		SearchDelay: s.cfg.Search.Delay,
		MaxHistory:  s.cfg.Tutor.MaxHistory,
	}
	return app.Run(ctx, env, !noSplash)
}

// serveMetrics exposes reg on addr until the returned stop is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return nil, fmt.Errorf("serve metrics on %s: %w", addr, err)
	case <-time.After(50 * time.Millisecond):
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
