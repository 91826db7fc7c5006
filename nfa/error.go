// Package nfa compiles parsed patterns into Thompson NFAs and runs them
// with a PikeVM.
//
// A pattern compiles to two programs: a forward program that matches input
// left to right and a reverse program that accepts exactly the reversed
// strings of the same language. Both record the same capture groups.
package nfa

import (
	"errors"
	"strconv"
)

var (
	// ErrTooComplex reports a pattern whose program would exceed the
	// state limit.
	ErrTooComplex = errors.New("pattern too large")

	// ErrUnsupportedOp reports an AST operator the compiler cannot lower.
	ErrUnsupportedOp = errors.New("unsupported operator")
)

// CompileError is returned by Compiler.Compile. Pattern is the canonical
// form of the parsed pattern.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pattern == "" {
		return "nfa: compile: " + e.Err.Error()
	}
	return "nfa: compile " + strconv.Quote(e.Pattern) + ": " + e.Err.Error()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// BuildError reports a malformed program assembled through the Builder.
// StateID is InvalidState when the problem is not tied to one state.
type BuildError struct {
	Message string
	StateID StateID
}

func (e *BuildError) Error() string {
	if e.StateID == InvalidState {
		return "nfa: build: " + e.Message
	}
	return "nfa: build: state " + strconv.FormatUint(uint64(e.StateID), 10) + ": " + e.Message
}
