package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/engine"
	"github.com/abhisek/brainkit/internal/llm"
	"github.com/abhisek/brainkit/internal/logging"
	"github.com/abhisek/brainkit/internal/server"
	"github.com/abhisek/brainkit/internal/store"
	"github.com/abhisek/brainkit/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference Brain AI backend",
	Long: "Run the reference Brain AI backend. With an LLM provider configured, learning " +
		"paths and tutor answers are generated by the model; otherwise rule-based answers " +
		"from the course catalog are served.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown, err := tracing.Init(ctx, cfg.Tracing, version, logger)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("tracing shutdown failed", zap.Error(err))
			}
		}()

		catalog, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		var repo store.EventRepo
		if st, err := openStore(cfg); err != nil {
			logger.Warn("event store unavailable; LLM calls will not be recorded", zap.Error(err))
		} else {
			defer st.Close()
			repo = st.EventRepo()
		}

		opts := []engine.Option{engine.WithLogger(logger.Named("engine"))}
		provider, err := llm.NewProvider(ctx, cfg.LLM, repo, logger.Named("llm"))
		switch {
		case errors.Is(err, llm.ErrNoProvider):
			logger.Info("no LLM provider configured; serving rule-based answers")
		case err != nil:
			return err
		default:
			logger.Info("LLM provider ready", zap.String("model", provider.ModelID()))
			opts = append(opts, engine.WithProvider(provider))
		}

		srv := server.New(engine.New(catalog, opts...), cfg.Server, server.WithLogger(logger))
		return srv.Run(ctx)
	},
}

func loadCatalog(cmd *cobra.Command) (*engine.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return engine.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return engine.LoadCatalog(data)
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().String("catalog", "", "Course catalog YAML (default: built-in catalog)")
}
