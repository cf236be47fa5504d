package domain

import "errors"

// ErrBusy is returned when a compilation is already in flight.
var ErrBusy = errors.New("a compilation is already in flight")

// ErrSuperseded is returned to the caller of a request whose result was discarded
// because a newer request was issued (or the request was abandoned).
var ErrSuperseded = errors.New("compilation result superseded by a newer request")

// ErrNoDiagram is returned when exporting or previewing before any successful compilation.
var ErrNoDiagram = errors.New("no diagram has been generated yet")
