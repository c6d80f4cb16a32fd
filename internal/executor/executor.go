// Package executor runs tasks as child processes and classifies the outcome.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/unframe/unframe/internal/script"
)

// DefaultMaxOutputSize is the default captured-output limit in bytes (1MB).
const DefaultMaxOutputSize = 1024 * 1024

// killDelay is how long Wait blocks for pipes to drain after the process
// group has been killed.
const killDelay = 5 * time.Second

// Executor executes the tasks of one test case: spawn, capture, parse,
// validate, classify.
type Executor struct {
	timeout       time.Duration
	parse         script.ParseFunc
	validate      script.ValidateFunc
	maxOutputSize int
}

// New creates an Executor. A zero timeout means tasks wait forever, bounded
// only by the caller's context.
func New(timeout time.Duration) *Executor {
	return &Executor{
		timeout:       timeout,
		maxOutputSize: DefaultMaxOutputSize,
	}
}

// WithParse sets the compiled parse function. Without one, raw stdout
// becomes the result mapping under a single "stdout" key.
func (e *Executor) WithParse(fn script.ParseFunc) *Executor {
	e.parse = fn
	return e
}

// WithValidate sets the compiled validate function. Without one, the
// verdict is exit-code equality to zero.
func (e *Executor) WithValidate(fn script.ValidateFunc) *Executor {
	e.validate = fn
	return e
}

// SetMaxOutputSize caps captured stdout/stderr. Output beyond the cap is
// truncated with a marker.
func (e *Executor) SetMaxOutputSize(size int) {
	e.maxOutputSize = size
}

// Run executes one task and classifies the result. Per-task failures are
// reported in the Result, never as a Go error: the suite always proceeds
// to the next task.
func (e *Executor) Run(ctx context.Context, task Task) Result {
	start := time.Now()

	if len(task.Argv) == 0 {
		return Result{Status: StatusExecError, ExitCode: -1, Message: "empty command"}
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, task.Argv[0], task.Argv[1:]...)
	if task.WorkDir != "" {
		cmd.Dir = task.WorkDir
	}
	cmd.Env = mergeEnviron(task.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Run the child in its own process group so cancellation kills the
	// whole tree and leaves no orphans behind.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = killDelay

	runErr := cmd.Run()
	elapsed := time.Since(start)

	out := e.truncate(stdout.String())
	errOut := e.truncate(stderr.String())

	if ctxErr := runCtx.Err(); ctxErr != nil {
		// A deadline is a timeout; anything else is the caller pulling
		// the plug (interrupt, suite shutdown).
		status, message := StatusTimeout, "timeout"
		if !errors.Is(ctxErr, context.DeadlineExceeded) {
			status, message = StatusCanceled, "canceled"
		}
		return Result{
			Status:   status,
			ExitCode: -1,
			Stdout:   out,
			Stderr:   errOut,
			Elapsed:  elapsed,
			Message:  message,
		}
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Result{
				Status:   StatusExecError,
				ExitCode: -1,
				Elapsed:  elapsed,
				Message:  "exec error: " + runErr.Error(),
			}
		}
	}
	exitCode := cmd.ProcessState.ExitCode()

	params := task.Binding.Strings()

	results := map[string]interface{}{"stdout": out}
	if e.parse != nil {
		parsed, err := e.parse(out, params)
		if err != nil {
			return Result{
				Status:   StatusParseError,
				ExitCode: exitCode,
				Stdout:   out,
				Stderr:   errOut,
				Elapsed:  elapsed,
				Message:  "parse error: " + err.Error(),
			}
		}
		results = parsed
	}

	passed := exitCode == 0
	message := ""
	if e.validate != nil {
		ok, msg, err := e.validate(results, params)
		if err != nil {
			return Result{
				Status:   StatusValidateError,
				ExitCode: exitCode,
				Stdout:   out,
				Stderr:   errOut,
				Elapsed:  elapsed,
				Results:  results,
				Message:  "validate error: " + err.Error(),
			}
		}
		passed = ok
		message = msg
	}

	status := StatusFail
	if passed {
		status = StatusPass
	}
	return Result{
		Status:   status,
		ExitCode: exitCode,
		Stdout:   out,
		Stderr:   errOut,
		Elapsed:  elapsed,
		Results:  results,
		Message:  message,
	}
}

// mergeEnviron layers the task environment over the process environment.
func mergeEnviron(taskEnv map[string]string) []string {
	env := os.Environ()
	for k, v := range taskEnv {
		env = append(env, k+"="+v)
	}
	return env
}

func (e *Executor) truncate(output string) string {
	if e.maxOutputSize <= 0 || len(output) <= e.maxOutputSize {
		return output
	}
	// Back off to a rune boundary so the cut never splits a UTF-8
	// sequence.
	cut := e.maxOutputSize
	for cut > 0 && !utf8.RuneStart(output[cut]) {
		cut--
	}
	return output[:cut] + "\n... [output truncated]"
}
