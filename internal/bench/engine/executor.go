package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Executor runs the benchmarked tool's index and search commands.
type Executor interface {
	Index(ctx context.Context, repoPath, label string) (CommandResult, Response, error)
	Search(ctx context.Context, req SearchRequest) (CommandResult, Response, error)
	Name() string
}

type SearchRequest struct {
	Query   string
	Limit   int
	Project string
	Trace   bool
}

type toolRequest struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

type indexPayload struct {
	Path string `json:"path"`
	Full bool   `json:"full"`
}

type searchPayload struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
	Project string `json:"project"`
	Trace   *bool  `json:"trace"`
}

type CLIConfig struct {
	Binary            string
	Profile           string
	Env               Environment
	HeartbeatInterval time.Duration
}

// CLIExecutor drives the tool through `<binary> [--profile p] command --json <request>`.
type CLIExecutor struct {
	cfg    CLIConfig
	runner *ProcessRunner
}

func NewCLIExecutor(cfg CLIConfig, runner *ProcessRunner) *CLIExecutor {
	if runner == nil {
		runner = NewProcessRunner()
	}
	return &CLIExecutor{cfg: cfg, runner: runner}
}

func (e *CLIExecutor) Name() string {
	return e.cfg.Binary
}

func (e *CLIExecutor) IndexArgs(repoPath string) ([]string, error) {
	return e.commandArgs(toolRequest{
		Action:  "index",
		Payload: indexPayload{Path: repoPath, Full: true},
	})
}

func (e *CLIExecutor) SearchArgs(req SearchRequest) ([]string, error) {
	var trace *bool
	if req.Trace {
		t := true
		trace = &t
	}
	return e.commandArgs(toolRequest{
		Action: "search",
		Payload: searchPayload{
			Query:   req.Query,
			Limit:   req.Limit,
			Project: req.Project,
			Trace:   trace,
		},
	})
}

func (e *CLIExecutor) commandArgs(req toolRequest) ([]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", req.Action, err)
	}
	args := []string{e.cfg.Binary}
	if e.cfg.Profile != "" {
		args = append(args, "--profile", e.cfg.Profile)
	}
	return append(args, "command", "--json", string(body)), nil
}

func (e *CLIExecutor) Index(ctx context.Context, repoPath, label string) (CommandResult, Response, error) {
	args, err := e.IndexArgs(repoPath)
	if err != nil {
		return CommandResult{ReturnCode: -1}, Response{Kind: ResponseMalformed, Reason: err.Error()}, err
	}
	return e.run(ctx, Command{
		Args:              args,
		Label:             label,
		HeartbeatInterval: e.cfg.HeartbeatInterval,
	})
}

func (e *CLIExecutor) Search(ctx context.Context, req SearchRequest) (CommandResult, Response, error) {
	args, err := e.SearchArgs(req)
	if err != nil {
		return CommandResult{ReturnCode: -1}, Response{Kind: ResponseMalformed, Reason: err.Error()}, err
	}
	return e.run(ctx, Command{
		Args:              args,
		HeartbeatInterval: e.cfg.HeartbeatInterval,
	})
}

func (e *CLIExecutor) run(ctx context.Context, c Command) (CommandResult, Response, error) {
	c.Env = e.cfg.Env.Vars()
	res, err := e.runner.Run(ctx, c)
	if err != nil {
		return res, Response{Kind: ResponseMalformed, Reason: err.Error()}, err
	}
	return res, ParseResponse(res.ReturnCode, res.Stdout), nil
}
