package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/quizcore/internal/config"
	"github.com/playperu/quizcore/internal/database"
	"github.com/playperu/quizcore/internal/engine"
	"github.com/playperu/quizcore/internal/quiz"
	"github.com/playperu/quizcore/internal/server"
	"github.com/playperu/quizcore/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	store, err := storage.NewSQLite(ctx, db, "game")
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	// --- Game config ---
	game := quiz.DemoConfig()
	if cfg.GameConfigPath != "" {
		game, err = quiz.LoadConfig(cfg.GameConfigPath)
		if err != nil {
			return fmt.Errorf("loading game config: %w", err)
		}
		logger.Info("loaded game config", "path", cfg.GameConfigPath, "game", game.Name)
	} else {
		logger.Info("using built-in demo game", "game", game.Name)
	}

	// --- Game session ---
	broker := server.NewBroker()
	eng := engine.New(logger, store, &server.BrokerAudio{Broker: broker})

	// Subscribers must be in place before the tick loop starts; the core's
	// bus is single-owner.
	broker.Bridge(eng.Bus())

	if err := eng.Init(game); err != nil {
		return fmt.Errorf("initializing session: %w", err)
	}
	defer eng.Destroy()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Engine:            eng,
		Broker:            broker,
		Sessions:          server.NewSessions(),
		Admin:             server.NewAdminSessions(),
		DB:                db,
		AdminPasswordHash: cfg.AdminPasswordHash,
		SPADir:            cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return eng.Run(gctx, cfg.TickInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
