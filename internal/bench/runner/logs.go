package runner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/engine"
)

const maxLogPrefixRunes = 50

var prefixReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// LogPrefix turns a query into a file name fragment.
func LogPrefix(query string) string {
	prefix := []rune(prefixReplacer.Replace(query))
	if len(prefix) > maxLogPrefixRunes {
		prefix = prefix[:maxLogPrefixRunes]
	}
	return string(prefix)
}

// RepoLogDir is the raw log directory of one candidate in one run.
func RepoLogDir(logDir, name, timestamp string) string {
	return filepath.Join(logDir, fmt.Sprintf("%s_%s", name, timestamp))
}

// stepLogs writes raw tool output for one candidate. A directory that could
// not be created turns every write into a no-op.
type stepLogs struct {
	dir  string
	repo string
}

func newStepLogs(dir, repo string) *stepLogs {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("create log directory failed", "repo", repo, "dir", dir, "error", err)
		return &stepLogs{repo: repo}
	}
	return &stepLogs{dir: dir, repo: repo}
}

func (l *stepLogs) write(step string, res engine.CommandResult) {
	if l.dir == "" {
		return
	}
	l.writeFile(step+"_stdout.json", res.Stdout)
	l.writeFile(step+"_stderr.log", res.Stderr)
}

func (l *stepLogs) writeFile(name, content string) {
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		slog.Warn("write log file failed", "repo", l.repo, "path", path, "error", err)
	}
}
