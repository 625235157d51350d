package sink

import (
	"os"

	"github.com/DjordjeVuckovic/context-bench/pkg/stringsutil"
)

const DefaultEsIndex = "context-bench"

type Config struct {
	PgURL string
	Es    EsConfig
}

type EsConfig struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// ConfigFromEnv reads sink settings. A sink without its connection setting is
// disabled.
func ConfigFromEnv() Config {
	cfg := Config{
		PgURL: os.Getenv("BENCH_PG_URL"),
		Es: EsConfig{
			Addresses: stringsutil.SplitList(os.Getenv("BENCH_ES_ADDRESSES")),
			Index:     os.Getenv("BENCH_ES_INDEX"),
			Username:  os.Getenv("BENCH_ES_USERNAME"),
			Password:  os.Getenv("BENCH_ES_PASSWORD"),
		},
	}
	if cfg.Es.Index == "" {
		cfg.Es.Index = DefaultEsIndex
	}
	return cfg
}

func (c Config) Empty() bool {
	return c.PgURL == "" && len(c.Es.Addresses) == 0
}
