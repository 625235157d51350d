package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/context-bench/pkg/config/env"
)

func main() {
	cfg, err := parseFlags(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}

	if cfg.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := env.LoadDotEnv(cfg.EnvFile); err != nil {
		slog.Warn("Failed to load env file", "path", cfg.EnvFile, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		slog.Warn("Benchmark interrupted, partial report saved", "error", err)
		stop()
		os.Exit(130)
	default:
		slog.Error("Benchmark failed", "error", err)
		stop()
		os.Exit(1)
	}
}
