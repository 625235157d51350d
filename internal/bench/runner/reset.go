package runner

import (
	"log/slog"
	"os"
	"path/filepath"
)

// IndexDirs are the locations, relative to a repository, where the tool keeps
// its index.
var IndexDirs = []string{
	".agents/mcp/.context",
	".agents/mcp/context/.context",
	".context",
	".context-finder",
}

func resetIndex(repoPath string) {
	for _, rel := range IndexDirs {
		dir := filepath.Join(repoPath, filepath.FromSlash(rel))
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("reset index failed", "dir", dir, "error", err)
			continue
		}
		slog.Debug("index removed", "dir", dir)
	}
}
