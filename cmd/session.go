package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/config"
	"github.com/abhisek/brainkit/internal/logging"
	"github.com/abhisek/brainkit/internal/query"
	"github.com/abhisek/brainkit/internal/store"
)

// session holds what a client command needs: configuration, a logger, the
// optional local store and a backend client.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store // nil when neither recording nor transcripts are enabled
	client *brainapi.Client
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Store.Path = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.UserID = v
	}
	if v, _ := cmd.Flags().GetString("api"); v != "" {
		cfg.API.BaseURL = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openSession builds a session. Logs go to console (nil keeps only the log
// file) and client metrics are registered on reg when it is non-nil. A
// store that cannot be opened is logged and skipped.
func openSession(cmd *cobra.Command, console io.Writer, reg prometheus.Registerer) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log, console)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger}
	if cfg.API.Record || cfg.Tutor.Persist {
		if st, err := openStore(cfg); err != nil {
			logger.Warn("local store unavailable; events and transcripts will not be kept", zap.Error(err))
		} else {
			s.store = st
		}
	}

	var repo store.EventRepo
	if s.store != nil && cfg.API.Record {
		repo = s.store.EventRepo()
	}
	s.client = newClient(cfg, logger, repo, reg)
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
	_ = s.logger.Sync()
}

// transcript returns the tutor transcript repo, or nil when conversations
// are not persisted.
func (s *session) transcript() store.TranscriptRepo {
	if s.store == nil || !s.cfg.Tutor.Persist {
		return nil
	}
	return s.store.TranscriptRepo()
}

// hookOptions returns the options shared by hooks the CLI drives directly.
func (s *session) hookOptions(cmd *cobra.Command) []query.Option {
	return []query.Option{
		query.WithLogger(s.logger),
		query.WithContext(cmd.Context()),
	}
}

func (s *session) requireUser() error {
	if s.cfg.UserID == "" {
		return errors.New("no learner selected: set user_id in the config or pass --user")
	}
	return nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newClient assembles the backend client. Requests pass through
// retry → recorder → metrics → tracing → HTTP; every retry attempt is
// traced, measured and recorded on its own.
func newClient(cfg *config.Config, logger *zap.Logger, repo store.EventRepo, reg prometheus.Registerer) *brainapi.Client {
	var d brainapi.Doer = &http.Client{Timeout: cfg.API.Timeout}
	d = brainapi.WithTracing(d)
	if reg != nil {
		d = brainapi.WithMetrics(d, brainapi.NewMetrics(reg))
	}
	if repo != nil {
		d = brainapi.WithRecorder(d, repo, logger)
	}
	d = brainapi.WithRetry(d, cfg.API.Retry)

	opts := []brainapi.Option{
		brainapi.WithDoer(d),
		brainapi.WithLogger(logger),
		brainapi.WithUserAgent("brainkit/" + version),
		brainapi.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
	}
	if cfg.API.Token != "" {
		opts = append(opts, brainapi.WithToken(cfg.API.Token))
	}
	return brainapi.New(cfg.API.BaseURL, opts...)
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseScore accepts "0.8", "80%" or "8/10" and returns a score and its
// maximum (0 when the score is already a fraction).
func parseScore(s string) (score, maxScore float64, err error) {
	switch {
	case strings.HasSuffix(s, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		return v, 100, err
	case strings.Contains(s, "/"):
		num, den, _ := strings.Cut(s, "/")
		if score, err = strconv.ParseFloat(num, 64); err != nil {
			return 0, 0, err
		}
		maxScore, err = strconv.ParseFloat(den, 64)
		return score, maxScore, err
	default:
		score, err = strconv.ParseFloat(s, 64)
		return score, 0, err
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
