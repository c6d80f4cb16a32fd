package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unframe/unframe/internal/config"
	"github.com/unframe/unframe/internal/perflog"
	"github.com/unframe/unframe/internal/spec"
)

// ErrSuiteFailed reports that at least one test did not pass.
var ErrSuiteFailed = errors.New("one or more tests failed")

// Suite is the full set of tests discovered in a directory, filtered by
// tag and executed sequentially in sorted file-name order.
type Suite struct {
	opts config.Options
	cfg  *config.Config
	log  *zap.Logger

	tests  []*Test
	broken []brokenTest
}

// brokenTest is a document whose parse/validate blocks failed to compile.
// The failure is isolated to that test; the rest of the suite still runs.
type brokenTest struct {
	name string
	file string
	err  error
}

// Load discovers *.yaml documents under opts.Dir, filters them by tag, and
// compiles each into a Test. A malformed document aborts the load; an
// empty result set is fatal as well.
func Load(opts config.Options, cfg *config.Config, log *zap.Logger) (*Suite, error) {
	files, err := filepath.Glob(filepath.Join(opts.Dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", opts.Dir, err)
	}
	sort.Strings(files)

	s := &Suite{opts: opts, cfg: cfg, log: log}
	for _, path := range files {
		doc, err := spec.LoadFile(path)
		if err != nil {
			return nil, err
		}

		if opts.Tag != "" && !doc.HasTag(opts.Tag) {
			log.Debug("skipping test: tag does not match",
				zap.String("name", doc.Name),
				zap.String("tag", opts.Tag),
			)
			continue
		}

		test, err := NewTest(doc, opts.ExtraArgs)
		if err != nil {
			s.broken = append(s.broken, brokenTest{name: doc.Name, file: doc.File, err: err})
			continue
		}
		s.tests = append(s.tests, test)
	}

	if len(s.tests)+len(s.broken) == 0 {
		return nil, errors.New("no tests loaded")
	}

	log.Debug("loaded tests", zap.Int("count", len(s.tests)))
	return s, nil
}

// Tests returns the loaded tests in execution order.
func (s *Suite) Tests() []*Test {
	return s.tests
}

// Run executes every loaded test sequentially. The returned error is
// ErrSuiteFailed when any task failed, or the underlying error when the
// run could not proceed at all.
func (s *Suite) Run(ctx context.Context) error {
	if s.opts.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.MaxTime)
		defer cancel()
	}

	runID := uuid.NewString()

	var perf *perflog.Writer
	outputDir := s.opts.OutputDir
	if outputDir == "" {
		outputDir = s.cfg.Run.Output
	}
	if outputDir != "" && !s.opts.DryRun {
		var err error
		perf, err = perflog.NewWriter(outputDir, runID)
		if err != nil {
			return err
		}
		defer func() { _ = perf.Close() }()
		s.log.Debug("writing performance log", zap.String("path", perf.Path()))
	}

	jobs := s.opts.Jobs
	if jobs <= 0 {
		jobs = s.cfg.Run.Jobs
	}

	deps := RunDeps{
		Timeout: s.cfg.TaskTimeout(),
		WorkDir: s.cfg.Run.WorkDir,
		DryRun:  s.opts.DryRun,
		Jobs:    jobs,
		RunID:   runID,
		Log:     s.log,
		Perf:    perf,
	}

	failed := false
	for _, b := range s.broken {
		s.log.Error("test cannot run",
			zap.String("name", b.name),
			zap.String("file", b.file),
			zap.Error(b.err),
		)
		failed = true
	}

	for _, test := range s.tests {
		s.log.Info("running test",
			zap.String("name", test.Name),
			zap.Int("tasks", len(test.Tasks())),
		)
		passed, err := test.Run(ctx, deps)
		if err != nil {
			return err
		}
		if !passed {
			failed = true
		}
	}

	if failed {
		return ErrSuiteFailed
	}
	return nil
}
