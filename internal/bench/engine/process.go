package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval      = 500 * time.Millisecond
	DefaultHeartbeatInterval = 30 * time.Second
	// DefaultWaitDelay bounds how long output is drained after a kill.
	DefaultWaitDelay = 2 * time.Second

	defaultLabel = "cmd"
)

type Command struct {
	Args              []string
	Dir               string
	Env               []string
	Label             string
	HeartbeatInterval time.Duration
}

type CommandResult struct {
	Command    []string
	ReturnCode int
	Stdout     string
	Stderr     string
	TimeMs     float64
	MaxRSSKB   int64
}

// HeartbeatFunc is called from the goroutine that invoked Run while the child is still alive.
type HeartbeatFunc func(label string, elapsed time.Duration)

// FormatHeartbeat renders the textual progress line for a running command.
func FormatHeartbeat(label string, elapsed time.Duration) string {
	return fmt.Sprintf("[progress] %s running %.1fs", label, elapsed.Seconds())
}

type ProcessRunner struct {
	supervisor   MemorySupervisor
	heartbeat    HeartbeatFunc
	pollInterval time.Duration
	waitDelay    time.Duration
}

type RunnerOption func(*ProcessRunner)

func WithSupervisor(s MemorySupervisor) RunnerOption {
	return func(r *ProcessRunner) {
		if s != nil {
			r.supervisor = s
		}
	}
}

func WithHeartbeat(fn HeartbeatFunc) RunnerOption {
	return func(r *ProcessRunner) {
		if fn != nil {
			r.heartbeat = fn
		}
	}
}

func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *ProcessRunner) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithWaitDelay(d time.Duration) RunnerOption {
	return func(r *ProcessRunner) {
		if d > 0 {
			r.waitDelay = d
		}
	}
}

func NewProcessRunner(opts ...RunnerOption) *ProcessRunner {
	r := &ProcessRunner{
		supervisor:   NewMemorySupervisor(DefaultTimeBinary),
		heartbeat:    stdoutHeartbeat,
		pollInterval: DefaultPollInterval,
		waitDelay:    DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func stdoutHeartbeat(label string, elapsed time.Duration) {
	fmt.Fprintln(os.Stdout, FormatHeartbeat(label, elapsed))
}

type exitResult struct {
	waitErr  error
	drainErr error
}

// Run executes c to completion. A non-zero exit status is reported through
// CommandResult.ReturnCode; an error is returned only when the child could not
// be started. Cancelling ctx kills the child's whole process group, so a tool
// forked by the memory supervisor dies with it.
func (r *ProcessRunner) Run(ctx context.Context, c Command) (CommandResult, error) {
	result := CommandResult{Command: c.Args, ReturnCode: -1}
	if len(c.Args) == 0 {
		return result, errors.New("empty command")
	}

	rssFile, err := os.CreateTemp("", "bench-rss-*")
	if err != nil {
		return result, fmt.Errorf("create rss file: %w", err)
	}
	rssPath := rssFile.Name()
	_ = rssFile.Close()
	defer os.Remove(rssPath)

	argv := r.supervisor.Wrap(c.Args, rssPath)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = r.waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return result, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("start %s: %w", argv[0], err)
	}

	var outBuf, errBuf bytes.Buffer
	var drains errgroup.Group
	drains.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	drains.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})

	exited := make(chan exitResult, 1)
	go func() {
		drainErr := drains.Wait()
		exited <- exitResult{drainErr: drainErr, waitErr: cmd.Wait()}
	}()

	label := c.Label
	if label == "" {
		label = defaultLabel
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	beats := newBeatSchedule(start, c.HeartbeatInterval)
	cancelled := ctx.Done()
	var forceClose <-chan time.Time
	var exit exitResult
poll:
	for {
		select {
		case exit = <-exited:
			break poll
		case now := <-ticker.C:
			if beats.due(now) {
				r.heartbeat(label, now.Sub(start))
			}
		case <-cancelled:
			cancelled = nil
			forceClose = time.After(r.waitDelay)
		case <-forceClose:
			// a descendant outside the process group still holds the pipes
			forceClose = nil
			slog.Warn("output still open after kill, closing pipes", "label", label)
			_ = stdout.Close()
			_ = stderr.Close()
		}
	}
	elapsed := time.Since(start)

	if exit.drainErr != nil {
		slog.Warn("output drain failed", "command", argv[0], "error", exit.drainErr)
	}
	var exitErr *exec.ExitError
	if exit.waitErr != nil && !errors.As(exit.waitErr, &exitErr) {
		slog.Warn("wait for command failed", "command", argv[0], "error", exit.waitErr)
	}

	result.ReturnCode = exitCode(cmd.ProcessState)
	result.Stdout = outBuf.String()
	result.Stderr = errBuf.String()
	result.TimeMs = float64(elapsed) / float64(time.Millisecond)
	result.MaxRSSKB = r.supervisor.PeakRSS(rssPath)

	return result, nil
}

// beatSchedule fires at start+interval, start+2*interval and so on. A poll
// that arrives late fires once and skips the beats it missed.
type beatSchedule struct {
	interval time.Duration
	next     time.Time
}

func newBeatSchedule(start time.Time, interval time.Duration) *beatSchedule {
	return &beatSchedule{interval: interval, next: start.Add(interval)}
}

func (s *beatSchedule) due(now time.Time) bool {
	if s.interval <= 0 || now.Before(s.next) {
		return false
	}
	for !now.Before(s.next) {
		s.next = s.next.Add(s.interval)
	}
	return true
}

// exitCode reports the child's exit status; a child killed by a signal
// reports the negated signal number.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}
