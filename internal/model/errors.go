package model

import "fmt"

// FormatError indicates an input file whose JSON does not match the
// expected document or bank shape.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid format in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid format in %s", e.Path)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ParseError indicates LLM output that could not be parsed into the
// expected structure, during generation or grading.
type ParseError struct {
	What string
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("parse %s: no JSON found in response", e.What)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderError indicates a network, HTTP, or auth failure from the
// LLM endpoint.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IOFailure indicates a file read or write failure.
type IOFailure struct {
	Op   string
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOFailure) Unwrap() error { return e.Err }
