package definition

import (
	"errors"
	"fmt"
)

// Kind classifies a validation issue.
type Kind string

const (
	KindSyntax            Kind = "syntax"
	KindDuplicateID       Kind = "duplicate-id"
	KindDanglingReference Kind = "dangling-reference"
	KindEmptyPool         Kind = "empty-pool"
	KindMissingField      Kind = "missing-field"
	KindInvalidAttribute  Kind = "invalid-attribute"
	KindUnknownType       Kind = "unknown-type"
)

// SyntaxError is returned when the definition text cannot be parsed at all.
type SyntaxError struct {
	Message string
	Line    int // 0 when the parser did not report a position
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Message)
	}
	return "syntax error: " + e.Message
}

// ValidationError represents a single structural problem in a parsed definition.
type ValidationError struct {
	Kind    Kind
	Ref     string // id of the offending pool, lane, element or flow
	Message string
	Line    int
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []*ValidationError {
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		return nil
	}
	out := make([]*ValidationError, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}
