package compiler

import (
	"errors"
	"fmt"
)

// NetworkError is a transport failure reaching the compiler (including timeouts).
// It is always safe to retry.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("compiler unreachable: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// RemoteValidationError means the compiler rejected the definition.
// Detail is the server-provided text and is shown to the user verbatim.
type RemoteValidationError struct {
	Status int
	Detail string
}

func (e *RemoteValidationError) Error() string {
	return e.Detail
}

// UnknownError covers every other failure: unexpected statuses, undecodable
// bodies and responses that break the service contract.
type UnknownError struct {
	Status int
	Cause  error
}

func (e *UnknownError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("unexpected compiler response (status %d): %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("unexpected compiler failure: %v", e.Cause)
}

func (e *UnknownError) Unwrap() error { return e.Cause }

// Classification labels used in logs and metrics.
const (
	ClassNetwork          = "network"
	ClassRemoteValidation = "remote_validation"
	ClassUnknown          = "unknown"
)

// Classify returns the classification label of err.
func Classify(err error) string {
	var netErr *NetworkError
	var remoteErr *RemoteValidationError
	switch {
	case errors.As(err, &netErr):
		return ClassNetwork
	case errors.As(err, &remoteErr):
		return ClassRemoteValidation
	default:
		return ClassUnknown
	}
}
