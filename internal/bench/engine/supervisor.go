package engine

import (
	"os"
	"strconv"
	"strings"
)

const DefaultTimeBinary = "/usr/bin/time"

// MemorySupervisor wraps a command so its peak resident memory can be read back after exit.
type MemorySupervisor interface {
	Wrap(args []string, outputPath string) []string
	PeakRSS(outputPath string) int64
}

// TimeSupervisor runs commands under GNU time and reads the %M value it writes.
type TimeSupervisor struct {
	Binary string
}

// NewMemorySupervisor returns a TimeSupervisor for binary, or NoSupervisor when binary is empty.
func NewMemorySupervisor(binary string) MemorySupervisor {
	if binary == "" {
		return NoSupervisor{}
	}
	return TimeSupervisor{Binary: binary}
}

func (s TimeSupervisor) Wrap(args []string, outputPath string) []string {
	wrapped := make([]string, 0, len(args)+5)
	wrapped = append(wrapped, s.Binary, "-f", "%M", "-o", outputPath)
	return append(wrapped, args...)
}

func (s TimeSupervisor) PeakRSS(outputPath string) int64 {
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return 0
	}
	return ParsePeakRSS(string(data))
}

// NoSupervisor runs commands unwrapped and always reports zero memory.
type NoSupervisor struct{}

func (NoSupervisor) Wrap(args []string, _ string) []string { return args }

func (NoSupervisor) PeakRSS(string) int64 { return 0 }

// ParsePeakRSS returns the last line of content that consists only of digits,
// or 0 when there is none. GNU time prefixes the value with a status line when
// the child exits non-zero.
func ParsePeakRSS(content string) int64 {
	var peak int64
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if !isDigits(line) {
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			continue
		}
		peak = v
	}
	return peak
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
