package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs every section validator in order.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validateExecution,
		validateVisualization,
		validateHistory,
		validateServer,
		validateWatch,
		validateExclude,
		validateTracing,
		validateOutput,
	}
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}
	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		cfg.Paths.CacheDir = "data/cache"
	}

	if strings.TrimSpace(cfg.Execution.Javac) == "" {
		cfg.Execution.Javac = "javac"
	}
	if strings.TrimSpace(cfg.Execution.Java) == "" {
		cfg.Execution.Java = "java"
	}
	if cfg.Execution.Timeout <= 0 {
		cfg.Execution.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.Execution.DefaultEntryPoint) == "" {
		cfg.Execution.DefaultEntryPoint = "Main"
	}
	if cfg.Execution.MaxOutputBytes <= 0 {
		cfg.Execution.MaxOutputBytes = 1 << 20
	}

	if strings.TrimSpace(cfg.Visualization.Format) == "" {
		cfg.Visualization.Format = "png"
	}
	if strings.TrimSpace(cfg.Visualization.DotBinary) == "" {
		cfg.Visualization.DotBinary = "dot"
	}
	if strings.TrimSpace(cfg.Visualization.OutputDir) == "" {
		cfg.Visualization.OutputDir = "static"
	}
	if cfg.Visualization.DPI <= 0 {
		cfg.Visualization.DPI = 300
	}
	if strings.TrimSpace(cfg.Visualization.Size) == "" {
		cfg.Visualization.Size = "10,10"
	}
	if cfg.Visualization.Timeout <= 0 {
		cfg.Visualization.Timeout = 10 * time.Second
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "history.db"
	}
	if cfg.History.QueueCapacity == 0 {
		cfg.History.QueueCapacity = 256
	}

	if strings.TrimSpace(cfg.Server.Address) == "" {
		cfg.Server.Address = "127.0.0.1:5000"
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.RateLimit.RequestsPerMinute <= 0 {
		cfg.Server.RateLimit.RequestsPerMinute = 60
	}
	if cfg.Server.RateLimit.Burst <= 0 {
		cfg.Server.RateLimit.Burst = 10
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if len(cfg.Watch.Paths) == 0 {
		cfg.Watch.Paths = []string{"."}
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "node_modules", "target", "build", "out"}
	}

	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "codelens"
	}
	if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		cfg.Tracing.Endpoint = "localhost:4317"
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}
}

func normalize(cfg *Config) {
	cfg.Visualization.Format = strings.ToLower(strings.TrimSpace(cfg.Visualization.Format))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Execution.DefaultEntryPoint = strings.TrimSpace(cfg.Execution.DefaultEntryPoint)
	cfg.Server.Address = strings.TrimSpace(cfg.Server.Address)
}
