package sandbox

import (
	"errors"
	"fmt"

	"github.com/aretw0/bpmngen/pkg/bpmn"
)

// BootstrapError means the rendering library could not be made available in a
// fresh realm. It ends the render attempt but leaves the controller usable.
type BootstrapError struct {
	RealmID string
	Cause   error
}

func (e *BootstrapError) Error() string {
	if e.RealmID == "" {
		return fmt.Sprintf("render sandbox bootstrap failed: %v", e.Cause)
	}
	return fmt.Sprintf("render sandbox bootstrap failed (realm %s): %v", e.RealmID, e.Cause)
}

func (e *BootstrapError) Unwrap() error { return e.Cause }

// ImportError is a rejection of the markup by the rendering library.
type ImportError = bpmn.ImportError

func asImportError(err error) *ImportError {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie
	}
	return &ImportError{Message: "import rejected", Cause: err}
}
