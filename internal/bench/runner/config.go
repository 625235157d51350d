package runner

const (
	DefaultLimit  = 10
	DefaultK      = 5
	DefaultLogDir = "bench/logs"
)

type Config struct {
	Limit      int
	K          int
	SkipIndex  bool
	ResetIndex bool
	LogDir     string
	Include    []string
	StartFrom  string
	Resume     bool
	Trace      bool
	// Timestamp suffixes every per-repository log directory of this run.
	Timestamp string
}

func DefaultConfig() Config {
	return Config{
		Limit:  DefaultLimit,
		K:      DefaultK,
		LogDir: DefaultLogDir,
	}
}
