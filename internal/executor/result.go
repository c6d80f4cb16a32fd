package executor

import "time"

// Status classifies the outcome of one task execution.
type Status string

// Valid status values.
const (
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
	StatusTimeout       Status = "timeout"
	StatusCanceled      Status = "canceled"
	StatusRenderError   Status = "render_error"
	StatusExecError     Status = "exec_error"
	StatusParseError    Status = "parse_error"
	StatusValidateError Status = "validate_error"
)

// Passed reports whether the status counts as a passing outcome. Every
// status other than pass counts as failure.
func (s Status) Passed() bool {
	return s == StatusPass
}

// Result captures everything observed from one task execution. It is
// produced once, handed to the logger, and not retained.
type Result struct {
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
	Results  map[string]interface{}
	Message  string
}
