package config

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gobwas/glob"
)

var (
	visualizationFormats = map[string]bool{"png": true, "svg": true, "dot": true, "mermaid": true, "plantuml": true}
	outputFormats        = map[string]bool{"text": true, "json": true, "markdown": true, "tsv": true}
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateExecution(cfg *Config) error {
	if cfg.Execution.Timeout < 100*time.Millisecond || cfg.Execution.Timeout > 5*time.Minute {
		return fmt.Errorf("execution.timeout must be between 100ms and 5m")
	}
	if !isJavaIdentifier(cfg.Execution.DefaultEntryPoint) {
		return fmt.Errorf("execution.default_entry_point %q is not a valid class name", cfg.Execution.DefaultEntryPoint)
	}
	if strings.TrimSpace(cfg.Execution.Javac) == "" || strings.TrimSpace(cfg.Execution.Java) == "" {
		return fmt.Errorf("execution.javac and execution.java must not be empty")
	}
	return nil
}

func validateVisualization(cfg *Config) error {
	if !visualizationFormats[cfg.Visualization.Format] {
		return fmt.Errorf("visualization.format must be one of: png, svg, dot, mermaid, plantuml")
	}
	if cfg.Visualization.DPI < 36 || cfg.Visualization.DPI > 1200 {
		return fmt.Errorf("visualization.dpi must be between 36 and 1200")
	}
	if cfg.Visualization.Timeout < 100*time.Millisecond || cfg.Visualization.Timeout > 5*time.Minute {
		return fmt.Errorf("visualization.timeout must be between 100ms and 5m")
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history.enabled=true")
	}
	if cfg.History.QueueCapacity < 1 {
		return fmt.Errorf("history.queue_capacity must be >= 1")
	}
	return nil
}

func validateServer(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if cfg.Server.MaxBodyBytes > 64<<20 {
		return fmt.Errorf("server.max_body_bytes must be <= 64MiB")
	}
	if cfg.Server.RateLimit.Enabled && cfg.Server.RateLimit.Burst < 1 {
		return fmt.Errorf("server.rate_limit.burst must be >= 1")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	for i, p := range cfg.Watch.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("watch.paths[%d] must not be empty", i)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid exclude dir pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid exclude file pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateTracing(cfg *Config) error {
	if cfg.Tracing.Enabled && strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		return fmt.Errorf("tracing.endpoint must not be empty when tracing.enabled=true")
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !outputFormats[cfg.Output.Format] {
		return fmt.Errorf("output.format must be one of: text, json, markdown, tsv")
	}
	return nil
}

func isJavaIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
