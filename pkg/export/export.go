// Package export packages the last compiled diagram as a downloadable artifact.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/bpmngen/internal/logging"
	"github.com/aretw0/bpmngen/pkg/domain"
)

const (
	// FileName is the fixed name of an exported diagram.
	FileName = "diagram.bpmn"
	// ContentType is the media type of an exported diagram.
	ContentType = "application/xml"
)

// Source yields the last successfully compiled diagram.
// Every ports.DiagramStore is a Source.
type Source interface {
	Latest(ctx context.Context) (*domain.Diagram, error)
}

// Artifact is a file-like export. Content is the compiler's markup, unchanged.
type Artifact struct {
	Name        string
	ContentType string
	Content     []byte
}

// Sink performs the user-initiated save of an artifact.
type Sink interface {
	Save(ctx context.Context, a *Artifact) error
}

// Exporter builds artifacts from a Source.
type Exporter struct {
	source Source
	logger *slog.Logger
}

// Option configures the Exporter.
type Option func(*Exporter)

// WithLogger configures a logger for the Exporter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// New creates an Exporter reading from source.
func New(source Source, opts ...Option) *Exporter {
	e := &Exporter{
		source: source,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export packages the last diagram. It returns domain.ErrNoDiagram when
// nothing has been compiled yet.
func (e *Exporter) Export(ctx context.Context) (*Artifact, error) {
	d, err := e.source.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNoDiagram
	}
	return &Artifact{
		Name:        FileName,
		ContentType: ContentType,
		Content:     []byte(d.Markup),
	}, nil
}

// ExportTo exports and hands the artifact to sink.
func (e *Exporter) ExportTo(ctx context.Context, sink Sink) (*Artifact, error) {
	a, err := e.Export(ctx)
	if err != nil {
		return nil, err
	}
	if err := sink.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save %s: %w", a.Name, err)
	}
	e.logger.Info("Diagram exported", "name", a.Name, "bytes", len(a.Content))
	return a, nil
}
