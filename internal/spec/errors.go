package spec

import "fmt"

// LoadError reports a malformed specification document. A load error is
// fatal for the whole run: a broken spec cannot be silently skipped.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("spec %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DuplicateSnippetError reports a snippet name declared more than once in
// the same document.
type DuplicateSnippetError struct {
	Name string
}

func (e *DuplicateSnippetError) Error() string {
	return fmt.Sprintf("duplicate snippet name: %q", e.Name)
}
