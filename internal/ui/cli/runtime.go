package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"codelens/internal/core/app"
	"codelens/internal/core/config"
	"codelens/internal/core/ports"
	"codelens/internal/data/history"
	"codelens/internal/shared/observability"
	"codelens/internal/shared/util"
	"codelens/internal/ui/httpapi"
	"codelens/internal/ui/report"
)

const stdinPath = "<stdin>"

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("codelens v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging("", opts.verbose)
	defer func() { cleanupLogs() }()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		slog.Error("failed to resolve runtime paths", "error", err)
		return 1
	}
	if opts.ui {
		// The terminal belongs to the UI from here on.
		cleanupLogs = configureLogging(paths.LogFile, opts.verbose)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := app.New(cfg, paths)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			slog.Warn("shutdown incomplete", "error", err)
		}
	}()

	switch {
	case opts.history > 0:
		return runHistory(ctx, os.Stdout, a.History(), opts.history)
	case opts.serve:
		return runServe(ctx, a)
	case opts.watch:
		return runWatch(ctx, a, opts)
	default:
		return runAnalyze(ctx, a, opts, os.Stdin, os.Stdout)
	}
}

// runAnalyze handles the one-shot mode: stdin when the only argument is
// "-", otherwise every source file under the given paths.
func runAnalyze(ctx context.Context, a *app.App, opts cliOptions, stdin io.Reader, stdout io.Writer) int {
	var (
		results []ports.AnalysisResult
		err     error
	)
	if len(opts.args) == 1 && opts.args[0] == "-" {
		var source []byte
		source, err = io.ReadAll(stdin)
		if err != nil {
			slog.Error("failed to read stdin", "error", err)
			return 1
		}
		var res ports.AnalysisResult
		res, err = a.AnalysisService().Analyze(ctx, ports.AnalysisRequest{Source: string(source), Path: stdinPath})
		if err == nil {
			results = append(results, res)
		}
	} else {
		results, err = a.AnalyzePaths(ctx, opts.args)
	}
	if err != nil {
		slog.Error("analysis failed", "error", err)
		return 1
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "no source files matched")
		return 1
	}

	var buf bytes.Buffer
	for i, res := range results {
		if i > 0 && a.Config.Output.Format != report.FormatJSON {
			buf.WriteString("\n")
		}
		if err := report.Write(&buf, a.Config.Output.Format, res); err != nil {
			slog.Error("failed to render report", "path", res.Path, "error", err)
			return 1
		}
	}

	if opts.outFile != "" {
		if err := util.WriteFileWithDirs(opts.outFile, buf.Bytes(), 0o644); err != nil {
			slog.Error("failed to write report", "path", opts.outFile, "error", err)
			return 1
		}
	} else if _, err := stdout.Write(buf.Bytes()); err != nil {
		return 1
	}

	if opts.inject != "" {
		file, marker, _ := parseInject(opts.inject)
		if err := report.InjectTree(file, marker, results[0].AST); err != nil {
			slog.Error("failed to inject syntax tree", "file", file, "marker", marker, "error", err)
			return 1
		}
	}
	return 0
}

func runServe(ctx context.Context, a *app.App) int {
	server, err := httpapi.NewServer(a.Config.Server, a.AnalysisService(), app.NewHealthService(a), a.Paths.OutputDir)
	if err != nil {
		slog.Error("failed to build http server", "error", err)
		return 1
	}
	if err := server.Start(ctx); err != nil {
		slog.Error("failed to start http server", "error", err)
		return 1
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("http server shutdown failed", "error", err)
		return 1
	}
	return 0
}

func runWatch(ctx context.Context, a *app.App, opts cliOptions) int {
	var stats *history.Stats
	if store := a.History(); store != nil {
		if runs, err := store.LoadRuns(ctx, time.Time{}, 0); err == nil {
			s := history.BuildStats(runs)
			stats = &s
		}
	}

	if !opts.ui {
		a.SetUpdateHandler(func(u app.Update) {
			printUpdate(os.Stdout, a.Config.Output.Format, u)
		})
	}

	initial, err := a.AnalyzePaths(ctx, a.Config.Watch.Paths)
	if err != nil {
		slog.Error("initial analysis failed", "error", err)
		return 1
	}
	if !opts.ui {
		printUpdate(os.Stdout, a.Config.Output.Format, app.Update{Results: initial, Timestamp: time.Now().UTC()})
	}

	if err := a.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	if opts.ui {
		if err := runUI(ctx, a, initial, stats); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	<-ctx.Done()
	return 0
}

func printUpdate(w io.Writer, format string, u app.Update) {
	for _, res := range u.Results {
		if err := report.Write(w, format, res); err != nil {
			slog.Error("failed to render report", "path", res.Path, "error", err)
		}
	}
	for _, path := range u.Removed {
		fmt.Fprintf(w, "removed: %s\n", path)
	}
	for _, path := range util.SortedStringKeys(u.Failures) {
		fmt.Fprintf(w, "failed: %s: %s\n", path, u.Failures[path])
	}
}

func runHistory(ctx context.Context, w io.Writer, store ports.HistoryStore, limit int) int {
	if store == nil {
		fmt.Fprintln(os.Stderr, "history store unavailable")
		return 1
	}
	runs, err := store.LoadRuns(ctx, time.Time{}, limit)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		return 1
	}
	writeHistory(w, runs)
	return 0
}

func writeHistory(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "History: no runs recorded.")
		return
	}
	fmt.Fprintf(w, "History: %d runs\n", len(runs))
	for _, r := range runs {
		path := r.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(w, "  %s %-9s %-10s %-22s invalid=%d errors=%d %s\n",
			r.Timestamp.Format(time.RFC3339),
			r.Verdict,
			r.Complexity,
			r.ExecutionStatus,
			r.InvalidTokenCount,
			r.StructureErrorCount,
			path,
		)
	}

	stats := history.BuildStats(runs)
	fmt.Fprintf(w, "Correct: %d | Incorrect: %d | Distinct inputs: %d | Avg invalid tokens: %.2f | Avg duration: %.2fms\n",
		stats.Correct, stats.Incorrect, stats.DistinctInputs, stats.AvgInvalid, stats.AvgDurationMS)
	fmt.Fprintf(w, "Complexity: %s\n", formatCounts(stats.ByComplexity))
	fmt.Fprintf(w, "Execution: %s\n", formatCounts(stats.ByExecution))
}

func formatCounts(counts map[string]int) string {
	keys := util.SortedStringKeys(counts)
	sort.SliceStable(keys, func(i, j int) bool { return counts[keys[i]] > counts[keys[j]] })
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

// loadConfig reads an explicit path, or the first default file found in
// cwd. With neither present the built-in defaults apply.
func loadConfig(path, cwd string) (*config.Config, error) {
	if strings.TrimSpace(path) != "" {
		return config.Load(path)
	}

	for _, candidate := range discoverDefaultConfig(cwd) {
		cfg, err := config.Load(candidate)
		if err == nil {
			slog.Debug("loaded config", "path", candidate)
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", candidate, err)
		}
	}

	slog.Debug("no config file found, using defaults", "cwd", cwd)
	cfg := config.Default()
	config.ApplyEnvOverrides(cfg)
	return cfg, nil
}

func discoverDefaultConfig(cwd string) []string {
	return []string{
		filepath.Join(cwd, config.DefaultConfigFile),
		filepath.Join(cwd, config.ExampleConfigFile),
	}
}

// configureLogging installs the default text logger. An empty logPath logs
// to stderr.
func configureLogging(logPath string, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	closeFn := func() {}
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel})))
	return closeFn
}
