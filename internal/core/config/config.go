package config

import (
	"time"
)

const (
	DefaultConfigFile = "codelens.toml"
	ExampleConfigFile = "codelens.example.toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Execution     Execution     `toml:"execution"`
	Visualization Visualization `toml:"visualization"`
	History       History       `toml:"history"`
	Server        Server        `toml:"server"`
	Watch         Watch         `toml:"watch"`
	Exclude       Exclude       `toml:"exclude"`
	Tracing       Tracing       `toml:"tracing"`
	Output        Output        `toml:"output"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
	CacheDir    string `toml:"cache_dir"`
}

// Execution configures the compile-and-run collaborator.
type Execution struct {
	Enabled           *bool         `toml:"enabled"`
	Javac             string        `toml:"javac"`
	Java              string        `toml:"java"`
	Timeout           time.Duration `toml:"timeout"`
	DefaultEntryPoint string        `toml:"default_entry_point"`
	MaxOutputBytes    int           `toml:"max_output_bytes"`
}

// Visualization configures AST rendering.
type Visualization struct {
	Enabled   *bool         `toml:"enabled"`
	Format    string        `toml:"format"`
	DotBinary string        `toml:"dot_binary"`
	OutputDir string        `toml:"output_dir"`
	DPI       int           `toml:"dpi"`
	Size      string        `toml:"size"`
	Timeout   time.Duration `toml:"timeout"`
}

type History struct {
	Enabled       bool   `toml:"enabled"`
	Path          string `toml:"path"`
	QueueCapacity int    `toml:"queue_capacity"`
}

type Server struct {
	Address         string    `toml:"address"`
	MaxBodyBytes    int64     `toml:"max_body_bytes"`
	ValidateOpenAPI *bool     `toml:"validate_openapi"`
	Metrics         bool      `toml:"metrics"`
	RateLimit       RateLimit `toml:"rate_limit"`
}

type RateLimit struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
	Burst             int  `toml:"burst"`
}

type Watch struct {
	Paths    []string      `toml:"paths"`
	Debounce time.Duration `toml:"debounce"`
}

type Exclude struct {
	Dirs             []string `toml:"dirs"`
	Files            []string `toml:"files"`
	RespectGitignore *bool    `toml:"respect_gitignore"`
}

type Tracing struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
}

type Output struct {
	Format string `toml:"format"`
}

func (e Execution) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

func (v Visualization) IsEnabled() bool {
	return v.Enabled == nil || *v.Enabled
}

func (s Server) OpenAPIValidationEnabled() bool {
	return s.ValidateOpenAPI == nil || *s.ValidateOpenAPI
}

func (e Exclude) GitignoreEnabled() bool {
	return e.RespectGitignore == nil || *e.RespectGitignore
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
