package ports

import (
	"context"

	"github.com/aretw0/bpmngen/pkg/domain"
)

// DiagramStore persists the last successfully compiled diagram so that it can be
// exported or previewed later (possibly from another process).
type DiagramStore interface {
	// Save replaces the stored diagram.
	Save(ctx context.Context, diagram *domain.Diagram) error

	// Latest returns the most recently saved diagram.
	// Returns domain.ErrNoDiagram if nothing was saved yet.
	Latest(ctx context.Context) (*domain.Diagram, error)
}
