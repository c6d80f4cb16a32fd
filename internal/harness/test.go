// Package harness compiles specification documents into executable test
// cases and drives suite execution.
package harness

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/shlex"

	"github.com/unframe/unframe/internal/executor"
	"github.com/unframe/unframe/internal/expand"
	"github.com/unframe/unframe/internal/script"
	"github.com/unframe/unframe/internal/spec"
	"github.com/unframe/unframe/internal/template"
)

// snippetNamespace is the reserved context key snippets are exposed under.
const snippetNamespace = "snippet"

// snippetToken matches a command element that is exactly one snippet
// reference. Such an element is spliced as a single argument so multi-line
// scripts survive intact.
var snippetToken = regexp.MustCompile(`^\{\{\s*snippet\.([A-Za-z0-9_-]+)\s*\}\}$`)

// Test is one compiled specification document: metadata, compiled
// parse/validate functions, the full binding list, and the tasks derived
// from them.
type Test struct {
	Name        string
	Description string
	Tags        []string
	File        string

	parse    script.ParseFunc
	validate script.ValidateFunc
	bindings []expand.Binding
	tasks    []executor.Task

	// buildErrs is index-aligned with tasks. A non-nil entry marks a
	// binding whose command could not be rendered or tokenized; that task
	// is recorded as failed without spawning, siblings still run.
	buildErrs []error
}

// NewTest compiles one document against the process-wide extra args.
// Parse/validate compile failures are fatal for this test case only; the
// suite isolates them. Render failures are narrower still: they poison
// only the affected binding's task.
func NewTest(doc *spec.Document, extraArgs map[string]interface{}) (*Test, error) {
	t := &Test{
		Name:        doc.Name,
		Description: doc.Description,
		Tags:        doc.Tags,
		File:        doc.File,
	}

	if _, clash := extraArgs[snippetNamespace]; clash {
		return nil, fmt.Errorf("extra args must not define the reserved %q key", snippetNamespace)
	}

	var err error
	if doc.Parse != "" {
		if t.parse, err = script.CompileParse(doc.Parse); err != nil {
			return nil, err
		}
	}
	if doc.Validate != "" {
		if t.validate, err = script.CompileValidate(doc.Validate); err != nil {
			return nil, err
		}
	}

	snippets, err := spec.SnippetTable(doc.Snippets)
	if err != nil {
		return nil, err
	}

	t.bindings = expand.Expand(doc.Params)
	for _, b := range t.bindings {
		if _, clash := b.Get(snippetNamespace); clash {
			return nil, fmt.Errorf("parameter names must not use the reserved %q key", snippetNamespace)
		}
		task, err := buildTask(doc, b, extraArgs, snippets)
		if err != nil {
			t.tasks = append(t.tasks, executor.Task{Test: doc.Name, Binding: b})
			t.buildErrs = append(t.buildErrs, err)
			continue
		}
		t.tasks = append(t.tasks, task)
		t.buildErrs = append(t.buildErrs, nil)
	}

	return t, nil
}

// Bindings returns the ordered parameter bindings.
func (t *Test) Bindings() []expand.Binding {
	return t.bindings
}

// Tasks returns the ordered task list.
func (t *Test) Tasks() []executor.Task {
	return t.tasks
}

// buildTask renders and tokenizes the command template for one binding.
func buildTask(doc *spec.Document, b expand.Binding, extraArgs map[string]interface{}, snippets map[string]string) (executor.Task, error) {
	renderer := template.NewRenderer()

	// The base context carries extra args and the binding; snippet bodies
	// render against it first so they may reference parameters themselves.
	base := template.Context{"extra_args": extraArgs}
	for k, v := range b.Map() {
		base[k] = v
	}

	rendered := make(map[string]string, len(snippets))
	for name, content := range snippets {
		rendered[name] = renderer.Render(content, base)
	}

	ctx := template.Context{snippetNamespace: rendered}
	for k, v := range base {
		ctx[k] = v
	}

	elements := make([]string, len(doc.Command))
	for i, element := range doc.Command {
		elements[i] = strings.TrimSpace(element)
	}
	lines := renderer.RenderAll(elements, ctx)

	var argv []string
	for i, raw := range elements {
		if m := snippetToken.FindStringSubmatch(raw); m != nil {
			content, ok := rendered[m[1]]
			if !ok {
				return executor.Task{}, fmt.Errorf("snippet %q not found", m[1])
			}
			argv = append(argv, content)
			continue
		}

		words, err := shlex.Split(lines[i])
		if err != nil {
			return executor.Task{}, fmt.Errorf("cannot tokenize %q: %w", lines[i], err)
		}
		argv = append(argv, words...)
	}

	env := make(map[string]string, len(doc.Env)+b.Len())
	for k, v := range doc.Env {
		env[k] = v
	}
	for k, v := range b.Strings() {
		env[k] = v
	}

	return executor.Task{
		Test:    doc.Name,
		Argv:    argv,
		Env:     env,
		WorkDir: doc.WorkDir,
		Binding: b,
	}, nil
}

// formatBinding renders binding values as fixed-width columns in
// declaration order, matching across a test's result lines.
func formatBinding(b expand.Binding) string {
	parts := make([]string, 0, b.Len())
	for _, k := range b.Keys() {
		v, _ := b.Get(k)
		parts = append(parts, fmt.Sprintf("%14v", v))
	}
	return strings.Join(parts, " ")
}
