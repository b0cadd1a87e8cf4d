package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CODELENS_[SECTION]_[KEY] (e.g., CODELENS_SERVER_ADDRESS).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "CODELENS_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "CODELENS_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.CacheDir, "CODELENS_PATHS_CACHE_DIR")

	// Execution
	setEnvBoolPtr(&cfg.Execution.Enabled, "CODELENS_EXECUTION_ENABLED")
	setEnvString(&cfg.Execution.Javac, "CODELENS_EXECUTION_JAVAC")
	setEnvString(&cfg.Execution.Java, "CODELENS_EXECUTION_JAVA")
	setEnvDuration(&cfg.Execution.Timeout, "CODELENS_EXECUTION_TIMEOUT")

	// Visualization
	setEnvBoolPtr(&cfg.Visualization.Enabled, "CODELENS_VISUALIZATION_ENABLED")
	setEnvString(&cfg.Visualization.Format, "CODELENS_VISUALIZATION_FORMAT")
	setEnvString(&cfg.Visualization.DotBinary, "CODELENS_VISUALIZATION_DOT_BINARY")
	setEnvString(&cfg.Visualization.OutputDir, "CODELENS_VISUALIZATION_OUTPUT_DIR")

	// History
	setEnvBool(&cfg.History.Enabled, "CODELENS_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "CODELENS_HISTORY_PATH")

	// Server
	setEnvString(&cfg.Server.Address, "CODELENS_SERVER_ADDRESS")
	setEnvBool(&cfg.Server.Metrics, "CODELENS_SERVER_METRICS")
	setEnvBool(&cfg.Server.RateLimit.Enabled, "CODELENS_SERVER_RATE_LIMIT_ENABLED")
	setEnvInt(&cfg.Server.RateLimit.RequestsPerMinute, "CODELENS_SERVER_RATE_LIMIT_REQUESTS_PER_MINUTE")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CODELENS_WATCH_DEBOUNCE")

	// Tracing
	setEnvBool(&cfg.Tracing.Enabled, "CODELENS_TRACING_ENABLED")
	setEnvString(&cfg.Tracing.Endpoint, "CODELENS_TRACING_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = &b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
