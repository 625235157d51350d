package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("report is locked by another process")

// Store owns one report path for the lifetime of a run. It holds an exclusive
// lock on <path>.lock so a second harness cannot write the same report.
type Store struct {
	path string
	lock *flock.Flock
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	lockPath := path + ".lock"
	l := flock.New(lockPath)
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire report lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock: %s)", ErrLocked, lockPath)
	}

	return &Store{path: path, lock: l}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Save writes the whole report to a temp file next to the target and renames
// it into place.
func (s *Store) Save(r *Report) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}

	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp report: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Load reads a previously written report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	if r.Repos == nil {
		r.Repos = []RepoRecord{}
	}
	return &r, nil
}

// Encode renders the report as indented JSON without HTML escaping.
func Encode(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return nil
}
