package harness

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unframe/unframe/internal/executor"
	"github.com/unframe/unframe/internal/perflog"
)

// RunDeps carries the collaborators a test needs to execute its tasks.
type RunDeps struct {
	// Timeout bounds each task's wall-clock time. Zero waits forever.
	Timeout time.Duration

	// WorkDir is the working directory for tasks whose document does not
	// override it.
	WorkDir string

	// DryRun renders and displays tasks without spawning processes.
	DryRun bool

	// Jobs is the worker pool width across this test's tasks. Values
	// below two run tasks sequentially.
	Jobs int

	// RunID is stamped on every performance record.
	RunID string

	Log  *zap.Logger
	Perf *perflog.Writer
}

// Run executes every task of the test in binding order and reports whether
// all of them passed. Per-task failures never abort the run; only record
// emission failures surface as errors.
func (t *Test) Run(ctx context.Context, deps RunDeps) (bool, error) {
	if deps.DryRun {
		allPassed := true
		for i, task := range t.tasks {
			if err := t.buildErrs[i]; err != nil {
				deps.Log.Error("FAIL",
					zap.String("test", t.Name),
					zap.String("params", formatBinding(task.Binding)),
					zap.String("message", "render error: "+err.Error()),
				)
				allPassed = false
				continue
			}
			task = t.resolveWorkDir(task, deps.WorkDir)
			deps.Log.Info("DRYRUN",
				zap.String("test", t.Name),
				zap.String("params", formatBinding(task.Binding)),
				zap.String("command", task.CommandLine()),
			)
		}
		return allPassed, nil
	}

	exe := executor.New(deps.Timeout).WithParse(t.parse).WithValidate(t.validate)

	// Bindings whose command failed to render are pre-failed; only the
	// healthy ones spawn processes.
	results := make([]executor.Result, len(t.tasks))
	for i := range t.tasks {
		if err := t.buildErrs[i]; err != nil {
			results[i] = executor.Result{
				Status:   executor.StatusRenderError,
				ExitCode: -1,
				Message:  "render error: " + err.Error(),
			}
		}
	}
	if deps.Jobs > 1 {
		g, runCtx := errgroup.WithContext(ctx)
		g.SetLimit(deps.Jobs)
		for i, task := range t.tasks {
			i, task := i, task
			if t.buildErrs[i] != nil {
				continue
			}
			g.Go(func() error {
				results[i] = exe.Run(runCtx, t.resolveWorkDir(task, deps.WorkDir))
				return nil
			})
		}
		// Workers only record results, they never return errors.
		_ = g.Wait()
	} else {
		for i, task := range t.tasks {
			if t.buildErrs[i] != nil {
				continue
			}
			results[i] = exe.Run(ctx, t.resolveWorkDir(task, deps.WorkDir))
		}
	}

	// Records are emitted in binding order regardless of completion order.
	allPassed := true
	for i, res := range results {
		if !res.Status.Passed() {
			allPassed = false
		}
		if err := t.emit(deps, t.tasks[i], res); err != nil {
			return false, err
		}
	}
	return allPassed, nil
}

func (t *Test) resolveWorkDir(task executor.Task, fallback string) executor.Task {
	if task.WorkDir == "" {
		task.WorkDir = fallback
	}
	return task
}

func (t *Test) emit(deps RunDeps, task executor.Task, res executor.Result) error {
	fields := []zap.Field{
		zap.String("test", t.Name),
		zap.String("params", formatBinding(task.Binding)),
		zap.String("status", string(res.Status)),
		zap.Duration("elapsed", res.Elapsed),
	}
	if res.Message != "" {
		fields = append(fields, zap.String("message", res.Message))
	}
	if res.Status.Passed() {
		deps.Log.Info("PASS", fields...)
	} else {
		deps.Log.Error("FAIL", fields...)
	}

	return deps.Perf.Write(perflog.Record{
		RunID:    deps.RunID,
		Test:     t.Name,
		Params:   task.Binding.Map(),
		Elapsed:  res.Elapsed.Seconds(),
		Passed:   res.Status.Passed(),
		Status:   string(res.Status),
		Message:  res.Message,
		ExitCode: res.ExitCode,
		Results:  res.Results,
	})
}
