package executor

import (
	"strings"

	"github.com/unframe/unframe/internal/expand"
)

// Task is one concrete executable unit derived from a test and a parameter
// binding. It is immutable once built and consumed exactly once.
type Task struct {
	Test    string
	Argv    []string
	Env     map[string]string
	WorkDir string
	Binding expand.Binding
}

// CommandLine renders the argv as a single shell-quotable line, used for
// dry-run display.
func (t Task) CommandLine() string {
	quoted := make([]string, len(t.Argv))
	for i, arg := range t.Argv {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'\\$&|;<>()*?[]#~%{}") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
