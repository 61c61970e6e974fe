package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/striker/config"
	"github.com/pthm-cable/striker/game"
	"github.com/pthm-cable/striker/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in cycles (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for scenario snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxCycles := flag.Int64("max-cycles", 0, "Stop after N cycles (0 = full match)")
	serve := flag.String("serve", "", "Address to stream the table over websocket, e.g. :8080")
	debug := flag.Bool("debug", false, "Log interception traces")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var stream *telemetry.Stream
	if *serve != "" {
		stream = telemetry.NewStream(logger)
		go stream.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle("/stream", stream)
		srv := &http.Server{Addr: *serve, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("stream server failed", "error", err)
			}
		}()
		defer srv.Close()
		slog.Info("streaming table", "addr", *serve, "path", "/stream")
	}

	m, err := game.NewMatch(game.Options{
		Seed:        rngSeed,
		MaxCycles:   *maxCycles,
		StatsWindow: *statsWindow,
		LogStats:    *logStats,
		SnapshotDir: *snapshotDir,
		OutputDir:   *outputDir,
		Logger:      logger,
		Stream:      stream,
	})
	if err != nil {
		slog.Error("failed to create match", "error", err)
		os.Exit(1)
	}

	slog.Info("starting match",
		"run_id", m.RunID(),
		"seed", rngSeed,
		"agent", m.Agent().String(),
		"max_cycles", *maxCycles,
	)

	runErr := m.Run(ctx)
	if err := m.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}

	mae, chases := m.Collector().Accuracy()
	slog.Info("match finished",
		"cycle", m.Cycle(),
		"score_left", m.Score().Left,
		"score_right", m.Score().Right,
		"prediction_mae", mae,
		"chases", chases,
	)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("match aborted", "error", runErr)
		os.Exit(1)
	}
}
