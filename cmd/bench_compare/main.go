package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
)

type cliConfig struct {
	Current  string
	Previous string
}

func parseFlags(name string, args []string, output io.Writer) (cliConfig, error) {
	cfg := cliConfig{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Current, "current", "", "Current benchmark report (JSON)")
	fs.StringVar(&cfg.Previous, "previous", "", "Previous benchmark report (JSON)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Current == "" || cfg.Previous == "" {
		return cfg, fmt.Errorf("both --current and --previous are required")
	}
	return cfg, nil
}

func run(cfg cliConfig, w io.Writer) error {
	current, err := report.Load(cfg.Current)
	if err != nil {
		return err
	}
	previous, err := report.Load(cfg.Previous)
	if err != nil {
		return err
	}

	report.WriteComparison(w, report.Compare(current, previous))
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}

	if err := run(cfg, os.Stdout); err != nil {
		slog.Error("Compare failed", "error", err)
		os.Exit(1)
	}
}
