package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/engine"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/runner"
	"github.com/DjordjeVuckovic/context-bench/pkg/stringsutil"
)

const (
	defaultCLI        = "target/release/context"
	defaultResultsDir = "bench/results"
	defaultEnvFile    = ".env"
)

type cliConfig struct {
	CLI              string
	Candidates       string
	Limit            int
	K                int
	Output           string
	SkipIndex        bool
	ResetIndex       bool
	LogDir           string
	ResultsDir       string
	Include          stringsutil.ListFlag
	StartFrom        string
	ProgressInterval float64
	ProgressFiles    int
	Resume           bool
	StrictResume     bool
	Trace            bool
	Model            string
	ModelDir         string
	CUDADevice       int
	CUDAMemLimitMB   int
	Profile          string
	Checkpoint       bool
	TimeBin          string
	Publish          bool
	EnvFile          string
	Verbose          bool
}

func parseFlags(name string, args []string, output io.Writer) (cliConfig, error) {
	cfg := cliConfig{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.CLI, "cli", defaultCLI, "Path to the context binary (falls back to context-finder)")
	fs.StringVar(&cfg.Candidates, "candidates", "", "Path to the candidates dataset (JSON or YAML)")
	fs.IntVar(&cfg.Limit, "limit", runner.DefaultLimit, "Search limit per query")
	fs.IntVar(&cfg.K, "k", runner.DefaultK, "Precision@k value")
	fs.StringVar(&cfg.Output, "output", "", "Report path (default <results-dir>/bench_<timestamp>.json)")
	fs.BoolVar(&cfg.SkipIndex, "skip-index", false, "Skip indexing, reuse existing indexes")
	fs.BoolVar(&cfg.ResetIndex, "reset-index", false, "Remove existing index directories before indexing")
	fs.StringVar(&cfg.LogDir, "log-dir", runner.DefaultLogDir, "Directory for raw per-step logs")
	fs.StringVar(&cfg.ResultsDir, "results-dir", defaultResultsDir, "Directory for reports when --output is omitted")
	fs.Var(&cfg.Include, "include", "Candidate names to run, comma-separated or repeated")
	fs.StringVar(&cfg.StartFrom, "start-from", "", "Skip candidates before this name")
	fs.Float64Var(&cfg.ProgressInterval, "progress-interval", engine.DefaultHeartbeatInterval.Seconds(), "Heartbeat interval in seconds")
	fs.IntVar(&cfg.ProgressFiles, "progress-files", 500, "Accepted for compatibility, unused")
	fs.BoolVar(&cfg.Resume, "resume", false, "Resume the report at --output, skipping processed candidates")
	fs.BoolVar(&cfg.StrictResume, "strict-resume", false, "Fail when resumed report parameters differ")
	fs.BoolVar(&cfg.Trace, "trace", false, "Request search traces from the tool")
	fs.StringVar(&cfg.Model, "model", "", "Embedding model id")
	fs.StringVar(&cfg.ModelDir, "model-dir", "", "Embedding model directory")
	fs.IntVar(&cfg.CUDADevice, "cuda-device", -1, "CUDA device index (-1 leaves it unset)")
	fs.IntVar(&cfg.CUDAMemLimitMB, "cuda-mem-limit-mb", -1, "CUDA memory limit in MB (-1 leaves it unset)")
	fs.StringVar(&cfg.Profile, "profile", "", "Search profile")
	fs.BoolVar(&cfg.Checkpoint, "checkpoint", true, "Save the report after each candidate")
	fs.StringVar(&cfg.TimeBin, "time-bin", engine.DefaultTimeBinary, "GNU time binary for peak RSS (empty disables)")
	fs.BoolVar(&cfg.Publish, "publish", false, "Publish the finished report to the configured sinks")
	fs.StringVar(&cfg.EnvFile, "env-file", defaultEnvFile, "Optional dotenv file with sink settings")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, cfg.validate()
}

func (c cliConfig) validate() error {
	switch {
	case c.Limit <= 0:
		return fmt.Errorf("--limit must be positive, got %d", c.Limit)
	case c.K <= 0:
		return fmt.Errorf("--k must be positive, got %d", c.K)
	case c.ProgressInterval <= 0:
		return fmt.Errorf("--progress-interval must be positive, got %v", c.ProgressInterval)
	case c.Resume && c.Output == "":
		return fmt.Errorf("--resume requires --output")
	}
	return nil
}

func (c cliConfig) heartbeatInterval() time.Duration {
	return time.Duration(c.ProgressInterval * float64(time.Second))
}

func (c cliConfig) runnerConfig(timestamp string) runner.Config {
	return runner.Config{
		Limit:      c.Limit,
		K:          c.K,
		SkipIndex:  c.SkipIndex,
		ResetIndex: c.ResetIndex,
		LogDir:     c.LogDir,
		Include:    c.Include,
		StartFrom:  c.StartFrom,
		Resume:     c.Resume,
		Trace:      c.Trace,
		Timestamp:  timestamp,
	}
}

func (c cliConfig) envOptions() engine.EnvOptions {
	opts := engine.EnvOptions{
		Model:    c.Model,
		ModelDir: c.ModelDir,
		Profile:  c.Profile,
	}
	if c.CUDADevice >= 0 {
		d := c.CUDADevice
		opts.CUDADevice = &d
	}
	if c.CUDAMemLimitMB >= 0 {
		m := c.CUDAMemLimitMB
		opts.CUDAMemLimitMB = &m
	}
	return opts
}

func (c cliConfig) embeddingModel() *string {
	if c.Model == "" {
		return nil
	}
	m := c.Model
	return &m
}
