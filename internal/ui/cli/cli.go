package cli

import (
	"flag"
	"fmt"
	"strings"

	"codelens/internal/core/config"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath string
	format     string
	serve      bool
	watch      bool
	ui         bool
	history    int
	noExec     bool
	noViz      bool
	inject     string
	outFile    string
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("codelens", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: ./codelens.toml, then ./codelens.example.toml)")
	fs.StringVar(&opts.format, "format", "", "Output format: text, json, markdown or tsv (overrides output.format)")
	fs.BoolVar(&opts.serve, "serve", false, "Serve the analysis API over HTTP")
	fs.BoolVar(&opts.watch, "watch", false, "Re-analyze source files whenever they change")
	fs.BoolVar(&opts.ui, "ui", false, "Show watch results in a terminal UI (implies --watch)")
	fs.IntVar(&opts.history, "history", 0, "Print the last N stored runs and exit")
	fs.BoolVar(&opts.noExec, "no-exec", false, "Do not compile and run the source")
	fs.BoolVar(&opts.noViz, "no-viz", false, "Do not render the syntax tree")
	fs.StringVar(&opts.inject, "inject", "", "Write the syntax tree into a markdown file between markers (<file>:<marker>)")
	fs.StringVar(&opts.outFile, "out", "", "Write the report to this file instead of stdout")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	if opts.ui {
		opts.watch = true
	}
	return opts, nil
}

// applyModeOptions rejects conflicting modes and folds flag overrides into
// cfg. cfg is validated again afterwards by the caller.
func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	modeCount := 0
	if opts.serve {
		modeCount++
	}
	if opts.watch {
		modeCount++
	}
	if opts.history > 0 {
		modeCount++
	}
	if modeCount > 1 {
		return fmt.Errorf("--serve, --watch/--ui and --history cannot be combined")
	}
	if opts.history < 0 {
		return fmt.Errorf("--history must be > 0, got %d", opts.history)
	}

	if opts.serve || opts.history > 0 {
		if len(opts.args) > 0 {
			return fmt.Errorf("--serve and --history do not accept positional path arguments")
		}
	}
	if !opts.serve && !opts.watch && opts.history == 0 && len(opts.args) == 0 {
		return fmt.Errorf("no input: pass a file, a directory or - for stdin")
	}

	if opts.inject != "" {
		if _, _, err := parseInject(opts.inject); err != nil {
			return err
		}
		if opts.watch || opts.serve {
			return fmt.Errorf("--inject only applies to a single analysis")
		}
	}

	if opts.watch {
		for _, arg := range opts.args {
			if arg == "-" {
				return fmt.Errorf("watch mode cannot read from stdin")
			}
		}
		if len(opts.args) > 0 {
			cfg.Watch.Paths = append([]string(nil), opts.args...)
		}
	}

	if format := strings.ToLower(strings.TrimSpace(opts.format)); format != "" {
		cfg.Output.Format = format
	}
	if opts.noExec {
		disabled := false
		cfg.Execution.Enabled = &disabled
	}
	if opts.noViz {
		disabled := false
		cfg.Visualization.Enabled = &disabled
	}
	if opts.history > 0 {
		cfg.History.Enabled = true
	}
	return nil
}

func parseInject(raw string) (string, string, error) {
	idx := strings.LastIndex(raw, ":")
	if idx <= 0 || idx == len(raw)-1 {
		return "", "", fmt.Errorf("--inject must be formatted as <file>:<marker>")
	}
	file, marker := strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+1:])
	if file == "" || marker == "" {
		return "", "", fmt.Errorf("--inject must be formatted as <file>:<marker>")
	}
	return file, marker, nil
}
