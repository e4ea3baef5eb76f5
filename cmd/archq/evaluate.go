package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"archq/internal/container"
	"archq/internal/document"
	"archq/internal/evaluation"
	"archq/internal/logging"
	"archq/internal/qualitymodel"
	"archq/internal/settings"
	"archq/internal/telemetry"
)

// env is what every evaluating command shares: settings from the current
// directory, the catalog, the logger and the metrics collector wired into
// one engine.
type env struct {
	settings *settings.Settings
	qm       *qualitymodel.QualityModel
	logger   *log.Logger
	metrics  *telemetry.Collector
	engine   *evaluation.Engine
}

func newEnv(root string, logOut io.Writer) (*env, error) {
	s, err := settings.Load(root)
	if err != nil {
		return nil, err
	}
	qm, err := qualitymodel.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Params{
		Level:  logging.ResolveLevel(s.LogLevel()),
		Output: logOut,
	})
	metrics := telemetry.New()
	eng := evaluation.New(qm,
		evaluation.WithLogger(logger),
		evaluation.WithObserver(metrics),
		evaluation.WithExclude(s.Excluder(qm)),
	)
	return &env{settings: s, qm: qm, logger: logger, metrics: metrics, engine: eng}, nil
}

// evaluateFile loads the architecture model at path and evaluates it.
func (e *env) evaluateFile(path string) (*evaluation.Result, error) {
	sys, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	return e.engine.Evaluate(sys), nil
}

// flushMetrics writes the Prometheus textfile when settings name one.
func (e *env) flushMetrics() error {
	path := e.settings.MetricsTextfile()
	if path == "" {
		return nil
	}
	if err := e.metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	e.logger.Debug("metrics written", "path", path)
	return nil
}

// exporterNames returns the project's exporters in sorted order.
func exporterNames(cfg *container.ProjectConfig) []string {
	names := make([]string, 0, len(cfg.Exporters))
	for n := range cfg.Exporters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// evaluate
// ---------------------------------------------------------------------------

func runEvaluate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: archq evaluate <workspace>")
	}
	w, err := container.Open(args[0])
	if err != nil {
		return err
	}
	e, err := newEnv(".", os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = evaluateWorkspace(ctx, e, w, os.Stdout)
	if ferr := e.flushMetrics(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	return err
}

// evaluateWorkspace evaluates every project of w concurrently. A failing
// project does not stop the others; all failures are joined.
func evaluateWorkspace(ctx context.Context, e *env, w *container.Workspace, out io.Writer) error {
	projects, err := w.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintf(out, "no projects in workspace %q\n", w.Name)
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	report := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, a...)
	}
	fail := func(proj string, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, fmt.Errorf("project %s: %w", proj, err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, proj := range projects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := evaluateProject(e, w, proj, report); err != nil {
				e.logger.Error("project failed", "workspace", w.Name, "project", proj, "err", err)
				fail(proj, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("one or more errors during evaluation: %w", errors.Join(errs...))
	}
	return nil
}

func evaluateProject(e *env, w *container.Workspace, proj string, report func(string, ...any)) error {
	cfg, err := w.LoadProject(proj)
	if err != nil {
		return err
	}
	res, err := e.evaluateFile(cfg.Model)
	if err != nil {
		return err
	}
	report("evaluated %s/%s (run %s, %d failures)\n", w.Name, proj, res.RunID, len(res.Errors))

	var errs []error
	for _, name := range exporterNames(cfg) {
		exp, err := exporters.Get(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dir := w.ReportDir(proj, name)
		if err := exp.Export(res, e.qm, cfg.Exporters[name], dir); err != nil {
			errs = append(errs, fmt.Errorf("export %s: %w", name, err))
			continue
		}
		report("  %s → %s\n", name, dir)
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func runCheck(args []string) error {
	return check(args, os.Stdout)
}

func check(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("o", "table", "output format: table or yaml")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return fmt.Errorf("usage: archq check [-o table|yaml] <model.yaml>")
	}
	if *format != "table" && *format != "yaml" {
		return fmt.Errorf("unknown output format %q (want table or yaml)", *format)
	}

	e, err := newEnv(".", os.Stderr)
	if err != nil {
		return err
	}
	res, err := e.evaluateFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if *format == "yaml" {
		data, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	} else {
		renderResult(out, res)
	}
	return e.flushMetrics()
}

// ---------------------------------------------------------------------------
// watch
// ---------------------------------------------------------------------------

// watchDelay coalesces the burst of events an editor produces on save.
const watchDelay = 200 * time.Millisecond

func runWatch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: archq watch <model.yaml>")
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	e, err := newEnv(".", os.Stderr)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory so that editors replacing the file are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	show := func() {
		res, err := e.evaluateFile(path)
		if err != nil {
			e.logger.Error("evaluation failed", "model", path, "err", err)
			return
		}
		fmt.Printf("\n%s  %s\n", time.Now().Format(time.TimeOnly), path)
		renderResult(os.Stdout, res)
	}
	show()
	e.logger.Info("watching for changes", "model", path)
	return watchLoop(ctx, watcher.Events, watcher.Errors, path, watchDelay, show)
}

// watchLoop calls onChange once per burst of writes to path. It returns
// nil when ctx is done or the event channels close.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, path string, delay time.Duration, onChange func()) error {
	target := filepath.Clean(path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}

// ---------------------------------------------------------------------------
// catalog
// ---------------------------------------------------------------------------

func runCatalog(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: archq catalog")
	}
	qm, err := qualitymodel.Load()
	if err != nil {
		return err
	}
	renderCatalog(os.Stdout, qm)
	return nil
}

// ---------------------------------------------------------------------------
// bundle
// ---------------------------------------------------------------------------

func runBundle(args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return fmt.Errorf("usage: archq bundle <workspace> [<dir> [<description>]]")
	}
	w, err := container.Open(args[0])
	if err != nil {
		return err
	}
	dst := "."
	if len(args) >= 2 {
		dst = args[1]
	}
	description := fmt.Sprintf("# %s\n\nArchitecture quality reports of workspace %s.\n", w.Name, w.Name)
	if len(args) == 3 {
		description = args[2] + "\n"
	}
	target, err := w.Bundle(dst, description)
	if err != nil {
		return err
	}
	fmt.Printf("bundled workspace %q into %s\n", w.Name, target)
	return nil
}
