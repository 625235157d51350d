package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/context-bench/internal/api"
	_ "github.com/DjordjeVuckovic/context-bench/internal/api/docs"
	"github.com/DjordjeVuckovic/context-bench/internal/server"
	"github.com/DjordjeVuckovic/context-bench/pkg/config/env"
	pkgserver "github.com/DjordjeVuckovic/context-bench/pkg/server"
)

// @title Context Bench Reports API
// @version 1.0
// @description Read-only access to context benchmark reports.
// @BasePath /
func main() {
	envFile := flag.String("env-file", ".env", "Optional dotenv file")
	flag.Parse()

	if err := env.LoadDotEnv(*envFile); err != nil {
		slog.Warn("Failed to load env file", "path", *envFile, "error", err)
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(cfg, resultsDirChecker(cfg.ResultsDir)).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*")

	reports := api.NewReportDir(cfg.ResultsDir)
	api.NewReportRouter(s.Echo, reports).Bind()

	slog.Info("serving reports", "results_dir", cfg.ResultsDir, "addr", s.Addr())
	if err := s.Start(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// resultsDirChecker is healthy while the results directory is readable. A
// directory that was never created counts as healthy with nothing to list.
func resultsDirChecker(dir string) pkgserver.HealthChecker {
	return pkgserver.HealthCheckerFunc(func(context.Context) bool {
		_, err := os.ReadDir(dir)
		return err == nil || os.IsNotExist(err)
	})
}
