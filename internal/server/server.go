package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/scoreboard-service/internal/app/games"
	"github.com/preston-bernstein/scoreboard-service/internal/config"
	"github.com/preston-bernstein/scoreboard-service/internal/console"
	"github.com/preston-bernstein/scoreboard-service/internal/logging"
	"github.com/preston-bernstein/scoreboard-service/internal/metrics"
	"github.com/preston-bernstein/scoreboard-service/internal/reporter"
	"github.com/preston-bernstein/scoreboard-service/internal/store"
)

var metricsSetup = metrics.Setup

// Reporter is the background board reporter lifecycle.
type Reporter interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

type Server struct {
	cfg             config.Config
	logger          *slog.Logger
	metrics         *metrics.Recorder
	registry        *store.Registry
	gamesService    *games.Service
	console         *console.Console
	input           io.Reader
	reporter        Reporter
	metricsServer   httpServer
	metricsStop     func(context.Context) error
	shutdownTimeout time.Duration
}

// New constructs a server reading commands from in and writing responses to out.
func New(cfg config.Config, logger *slog.Logger, in io.Reader, out io.Writer) *Server {
	return newServerWithMetrics(cfg, logger, in, out, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, in io.Reader, out io.Writer, recorder *metrics.Recorder) *Server {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	registry := store.NewRegistry()
	recorder.WatchBoard(registry.Totals)
	gameSvc := games.NewService(registry,
		games.WithLogger(logger),
		games.WithRecorder(recorder),
		games.WithRevokeRetries(cfg.RevokeRetries),
	)

	var rep Reporter
	if cfg.Report.Enabled {
		rep = reporter.New(gameSvc, logger, recorder, cfg.Report.Interval)
	}

	return &Server{
		cfg:             cfg,
		logger:          logger,
		metrics:         recorder,
		registry:        registry,
		gamesService:    gameSvc,
		console:         console.New(gameSvc, out, logger, cfg.ConsoleFormat),
		input:           in,
		reporter:        rep,
		metricsServer:   metricsSrv,
		metricsStop:     metricsShutdown,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves metrics, starts the reporter, and processes console commands
// until ctx is cancelled or the console input ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if s.metricsServer != nil {
		logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
		g.Go(func() error {
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Warn(s.logger, "metrics server failed", "error", err)
			}
			return nil
		})
	}

	if s.reporter != nil {
		s.reporter.Start(gctx)
	}

	g.Go(func() error {
		// Input ending is a request to shut down.
		defer cancel()
		return s.console.Run(logging.WithLogger(gctx, s.logger), s.input)
	})

	<-gctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()

	err := g.Wait()
	logging.Info(s.logger, "shutdown complete")
	return err
}

func (s *Server) gracefulShutdown() {
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.reporter != nil {
		if err := s.reporter.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop reporter", err)
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	logging.Info(s.logger, "final scoreboard", logging.FieldCount, s.registry.Len())
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		metricsSrv = newMetricsServer(recCfg.Port, mux)
	}

	return rec, metricsSrv, shutdown
}
