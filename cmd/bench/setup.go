package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/engine"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/progress"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/runner"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/sink"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/suite"
)

const legacyCLIName = "context-finder"

// resolveCLIPath falls back to the legacy binary name when only that one is built.
func resolveCLIPath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if filepath.Base(path) == "context" {
		legacy := filepath.Join(filepath.Dir(path), legacyCLIName)
		if _, err := os.Stat(legacy); err == nil {
			return legacy
		}
	}
	return path
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("context binary not found at %s: %w", path, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("context binary not executable: %s", path)
	}
	return nil
}

// resolveTimeBinary disables memory supervision when the time binary is missing.
func resolveTimeBinary(path string) string {
	if path == "" {
		return ""
	}
	if err := ensureExecutable(path); err != nil {
		slog.Warn("memory supervisor unavailable, max_rss_kb will be 0", "time_bin", path, "error", err)
		return ""
	}
	return path
}

func candidatesPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return suite.DefaultPath(".")
}

// reportPath returns the report location and whether it must already exist.
func reportPath(cfg cliConfig, timestamp string) (string, error) {
	if cfg.Output == "" {
		if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
			return "", fmt.Errorf("create results dir: %w", err)
		}
		return filepath.Join(cfg.ResultsDir, "bench_"+timestamp+".json"), nil
	}
	if cfg.Resume {
		if _, err := os.Stat(cfg.Output); err != nil {
			return "", fmt.Errorf("cannot resume: %w", err)
		}
	}
	return cfg.Output, nil
}

// openReport loads the report to resume or starts a new one.
func openReport(cfg cliConfig, path string, h report.Header) (*report.Report, error) {
	if !cfg.Resume {
		h.RunID = uuid.NewString()
		return report.New(h), nil
	}

	slog.Info("resume mode", "report", path)
	rep, err := report.Load(path)
	if err != nil {
		return nil, err
	}

	if mismatches := rep.HeaderMismatches(h); len(mismatches) > 0 {
		for _, m := range mismatches {
			slog.Warn("resume parameter mismatch", "field", m.Field, "report", m.Previous, "invocation", m.Current)
		}
		if cfg.StrictResume {
			return nil, fmt.Errorf("resume parameters differ from %s: %v", path, mismatches)
		}
	}

	if rep.RunID == "" {
		h.RunID = uuid.NewString()
	}
	rep.ApplyHeader(h)
	return rep, nil
}

func checkModel(cfg cliConfig) {
	if cfg.Model == "" || cfg.ModelDir == "" {
		return
	}
	m, err := engine.LoadModelManifest(cfg.ModelDir)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		slog.Warn("cannot read model manifest", "model_dir", cfg.ModelDir, "error", err)
		return
	}
	if !m.Has(cfg.Model) {
		slog.Warn("unknown requested model id", "model", cfg.Model, "manifest", filepath.Join(cfg.ModelDir, engine.ManifestFile))
	}
}

// run is the whole harness invocation. Errors returned before the candidate
// loop starts are setup errors.
func run(ctx context.Context, cfg cliConfig, stdout io.Writer) error {
	cli := resolveCLIPath(cfg.CLI)
	if err := ensureExecutable(cli); err != nil {
		return err
	}

	candidates, err := suite.LoadFromFile(candidatesPath(cfg.Candidates))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	timestamp := report.FormatTimestamp(now)

	path, err := reportPath(cfg, timestamp)
	if err != nil {
		return err
	}

	store, err := report.OpenStore(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("release report lock", "error", err)
		}
	}()

	rep, err := openReport(cfg, path, report.Header{
		GeneratedAt:    now,
		CLI:            cli,
		Limit:          cfg.Limit,
		K:              cfg.K,
		Profile:        cfg.Profile,
		EmbeddingModel: cfg.embeddingModel(),
	})
	if err != nil {
		return err
	}

	checkModel(cfg)
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		slog.Warn("create log dir", "log_dir", cfg.LogDir, "error", err)
	}

	printer := progress.New(stdout)
	env := engine.BuildEnvironment(os.Environ(), cfg.envOptions(), engine.DefaultLibraryProbe())
	procRunner := engine.NewProcessRunner(
		engine.WithSupervisor(engine.NewMemorySupervisor(resolveTimeBinary(cfg.TimeBin))),
		engine.WithHeartbeat(printer.Heartbeat),
	)
	executor := engine.NewCLIExecutor(engine.CLIConfig{
		Binary:            cli,
		Profile:           cfg.Profile,
		Env:               env,
		HeartbeatInterval: cfg.heartbeatInterval(),
	}, procRunner)

	opts := []runner.Option{runner.WithObserver(printer)}
	if cfg.Checkpoint {
		opts = append(opts, runner.WithCheckpoint(store.Save))
	}

	slog.Debug("starting run",
		"run_id", rep.RunID,
		"cli", cli,
		"candidates", len(candidates),
		"report", path,
		"progress_files", cfg.ProgressFiles)

	runErr := runner.New(cfg.runnerConfig(timestamp), executor, opts...).Run(ctx, candidates, rep)

	if err := store.Save(rep); err != nil {
		return errors.Join(runErr, fmt.Errorf("save report: %w", err))
	}
	printer.Saved(path)
	report.WriteTable(rep, stdout)

	switch {
	case cfg.Publish && ctx.Err() != nil:
		slog.Warn("run interrupted, report not published", "report", path)
	case cfg.Publish:
		publish(ctx, rep)
	}

	return runErr
}

// publish ships the report to every configured sink. Failures are logged only.
func publish(ctx context.Context, rep *report.Report) {
	sinkCfg := sink.ConfigFromEnv()
	if sinkCfg.Empty() {
		slog.Warn("--publish set but no sink is configured")
		return
	}

	pubs, err := sink.Open(ctx, sinkCfg)
	defer sink.CloseAll(pubs)
	if err != nil {
		slog.Error("open sinks", "error", err)
	}
	if err := sink.PublishAll(ctx, pubs, rep); err != nil {
		slog.Error("publish report", "error", err)
	}
}
