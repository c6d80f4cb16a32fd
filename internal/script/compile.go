// Package script compiles inline parse and validate blocks into callable
// functions using the yaegi interpreter.
//
// A block is Go source text that must define a function with the block's
// name. Only standard library symbols are available to the interpreted
// code; everything else it needs arrives through its arguments.
package script

import (
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// CompileError reports a block that failed to interpret.
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s block: %v", e.Name, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// MissingFunctionError reports a block that interpreted cleanly but does
// not define a function with the required name and signature.
type MissingFunctionError struct {
	Name   string
	Reason string
}

func (e *MissingFunctionError) Error() string {
	return fmt.Sprintf("%s block must define %s", e.Name, e.Reason)
}

// ParseFunc turns raw process stdout into a result mapping.
type ParseFunc func(stdout string, params map[string]string) (map[string]interface{}, error)

// ValidateFunc judges a parsed result. It returns the verdict and an
// optional human-readable message.
type ValidateFunc func(results map[string]interface{}, params map[string]string) (bool, string, error)

// CompileParse compiles a parse block. Accepted signatures:
//
//	func parse(stdout string, params map[string]string) (map[string]interface{}, error)
//	func parse(stdout string, params map[string]string) map[string]interface{}
//
// A panic raised by the interpreted function is recovered and returned as
// an error by the wrapper.
func CompileParse(src string) (ParseFunc, error) {
	fn, err := evalFunction(src, "parse")
	if err != nil {
		return nil, err
	}

	var call func(string, map[string]string) (map[string]interface{}, error)
	switch f := fn.(type) {
	case func(string, map[string]string) (map[string]interface{}, error):
		call = f
	case func(string, map[string]string) map[string]interface{}:
		call = func(out string, params map[string]string) (map[string]interface{}, error) {
			return f(out, params), nil
		}
	default:
		return nil, &MissingFunctionError{
			Name:   "parse",
			Reason: "func parse(stdout string, params map[string]string) (map[string]interface{}, error)",
		}
	}

	return func(out string, params map[string]string) (results map[string]interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return call(out, params)
	}, nil
}

// CompileValidate compiles a validate block. Accepted signatures:
//
//	func validate(results map[string]interface{}, params map[string]string) (bool, string)
//	func validate(results map[string]interface{}, params map[string]string) bool
func CompileValidate(src string) (ValidateFunc, error) {
	fn, err := evalFunction(src, "validate")
	if err != nil {
		return nil, err
	}

	var call func(map[string]interface{}, map[string]string) (bool, string)
	switch f := fn.(type) {
	case func(map[string]interface{}, map[string]string) (bool, string):
		call = f
	case func(map[string]interface{}, map[string]string) bool:
		call = func(results map[string]interface{}, params map[string]string) (bool, string) {
			return f(results, params), ""
		}
	default:
		return nil, &MissingFunctionError{
			Name:   "validate",
			Reason: "func validate(results map[string]interface{}, params map[string]string) (bool, string)",
		}
	}

	return func(results map[string]interface{}, params map[string]string) (ok bool, msg string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		ok, msg = call(results, params)
		return ok, msg, nil
	}, nil
}

// evalFunction interprets the block in an isolated interpreter and returns
// the value bound to the named function.
func evalFunction(src, name string) (interface{}, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, &CompileError{Name: name, Err: err}
	}

	code := src
	if !strings.HasPrefix(strings.TrimSpace(src), "package ") {
		code = "package main\n\n" + src
	}

	if _, err := i.Eval(code); err != nil {
		return nil, &CompileError{Name: name, Err: err}
	}

	v, err := i.Eval("main." + name)
	if err != nil {
		return nil, &MissingFunctionError{Name: name, Reason: "a function named " + name}
	}
	return v.Interface(), nil
}
