package env

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file.
// ENV_PATH, when set, takes precedence over defaultPath. A missing file is not
// an error; variables already present in the environment are kept.
func LoadDotEnv(defaultPath string) error {
	envPath := defaultPath
	if p := os.Getenv("ENV_PATH"); p != "" {
		envPath = p
	}
	if envPath == "" {
		return nil
	}

	err := godotenv.Load(envPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Skipping .env ...", "path", envPath)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Debug("loaded .env", "path", envPath)
	return nil
}
