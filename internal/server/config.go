package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/context-bench/pkg/stringsutil"
)

const (
	DefaultPort       = "8080"
	DefaultResultsDir = "bench/results"
)

type Config struct {
	Port        string
	UseHttp2    bool
	CorsOrigins []string
	ResultsDir  string
}

// LoadConfig reads the server settings from the environment. Callers load any
// .env file beforehand.
func LoadConfig() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}

	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	origins := stringsutil.SplitList(os.Getenv("CORS_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	resultsDir := os.Getenv("BENCH_RESULTS_DIR")
	if resultsDir == "" {
		resultsDir = DefaultResultsDir
	}

	return &Config{
		Port:        port,
		UseHttp2:    os.Getenv("USE_HTTP2") == "true",
		CorsOrigins: origins,
		ResultsDir:  resultsDir,
	}, nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
