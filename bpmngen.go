package bpmngen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/bpmngen/internal/logging"
	"github.com/aretw0/bpmngen/pkg/adapters/memory"
	"github.com/aretw0/bpmngen/pkg/compiler"
	"github.com/aretw0/bpmngen/pkg/definition"
	"github.com/aretw0/bpmngen/pkg/domain"
	"github.com/aretw0/bpmngen/pkg/export"
	"github.com/aretw0/bpmngen/pkg/generation"
	"github.com/aretw0/bpmngen/pkg/ports"
	"github.com/aretw0/bpmngen/pkg/sandbox"
)

// Studio is the high-level entry point: it validates definitions, compiles
// them through the orchestrator, renders results in the sandbox and exports
// the last diagram.
type Studio struct {
	orchestrator *generation.Orchestrator
	sandbox      *sandbox.Controller
	exporter     *export.Exporter

	// renderMu orders renders so that the realm always ends on the latest
	// applied diagram.
	renderMu sync.Mutex

	compiler generation.Compiler
	store    ports.DiagramStore
	realms   sandbox.RealmFactory
	timeout  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Studio.
type Option func(*Studio)

// WithCompiler injects a compiler, bypassing the default HTTP client.
func WithCompiler(c generation.Compiler) Option {
	return func(s *Studio) {
		s.compiler = c
	}
}

// WithStore sets where compiled diagrams are kept (default: in memory).
func WithStore(store ports.DiagramStore) Option {
	return func(s *Studio) {
		s.store = store
	}
}

// WithRealmFactory enables previews rendered into realms from f.
func WithRealmFactory(f sandbox.RealmFactory) Option {
	return func(s *Studio) {
		s.realms = f
	}
}

// WithTimeout bounds each compilation request of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(s *Studio) {
		s.timeout = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Studio) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		s.logger = logger
	}
}

// New creates a Studio talking to the compilation service at compilerURL.
// compilerURL may be empty when WithCompiler is given.
func New(compilerURL string, opts ...Option) (*Studio, error) {
	s := &Studio{
		timeout: compiler.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}

	if s.compiler == nil {
		if compilerURL == "" {
			return nil, fmt.Errorf("compilerURL is required when no custom compiler is provided")
		}
		c, err := compiler.New(compilerURL,
			compiler.WithTimeout(s.timeout),
			compiler.WithLogger(s.logger),
		)
		if err != nil {
			return nil, err
		}
		s.compiler = c
	}

	s.orchestrator = generation.New(s.compiler,
		generation.WithStore(s.store),
		generation.WithLifecycleHooks(s.hooks),
		generation.WithLogger(s.logger),
	)
	if s.realms != nil {
		s.sandbox = sandbox.New(s.realms,
			sandbox.WithLifecycleHooks(s.hooks),
			sandbox.WithLogger(s.logger),
		)
	}
	s.exporter = export.New(s.store, export.WithLogger(s.logger))
	return s, nil
}

// Result is the outcome of one Generate call.
type Result struct {
	Definition *domain.WorkflowDefinition
	Warnings   []*definition.ValidationError
	Diagram    *domain.Diagram

	// Render is nil when previews are disabled or the render was skipped.
	Render *sandbox.Outcome
	// RenderErr is a *sandbox.ImportError or *sandbox.BootstrapError displayed
	// inside the preview, or domain.ErrSuperseded when a newer diagram was
	// applied before this one reached the sandbox. It does not fail the generation.
	RenderErr error
}

// Validate checks raw definition text without side effects.
func (s *Studio) Validate(raw []byte) (*definition.Result, error) {
	return definition.Validate(raw)
}

// Generate validates raw, compiles it and renders the result.
//
// Local errors (*definition.SyntaxError, *definition.AggregateError) are
// returned before anything is sent to the compiler. domain.ErrBusy and
// domain.ErrSuperseded come from the orchestrator, as do the classified
// compiler errors.
func (s *Studio) Generate(ctx context.Context, raw []byte) (*Result, error) {
	vr, err := definition.Validate(raw)
	if err != nil {
		return nil, err
	}
	for _, w := range vr.Warnings {
		s.logger.Warn("Definition warning", "kind", w.Kind, "ref", w.Ref, "line", w.Line, "message", w.Message)
	}

	diagram, err := s.orchestrator.Generate(ctx, vr.Definition)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Definition: vr.Definition,
		Warnings:   vr.Warnings,
		Diagram:    diagram,
	}
	if s.sandbox != nil {
		res.Render, res.RenderErr = s.renderLatest(ctx, diagram)
	}
	return res, nil
}

// renderLatest renders d unless a newer diagram has been applied meanwhile.
func (s *Studio) renderLatest(ctx context.Context, d *domain.Diagram) (*sandbox.Outcome, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	if last, ok := s.orchestrator.LastDiagram(); !ok || last.Token != d.Token {
		s.logger.Info("Preview skipped, a newer diagram was applied", "token", d.Token)
		return nil, domain.ErrSuperseded
	}
	return s.sandbox.Render(ctx, d.Markup)
}

// Preview renders the stored diagram again.
func (s *Studio) Preview(ctx context.Context) (*sandbox.Outcome, error) {
	if s.sandbox == nil {
		return nil, errors.New("preview is not configured")
	}
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	d, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.sandbox.Render(ctx, d.Markup)
}

// Export packages the last diagram as diagram.bpmn.
func (s *Studio) Export(ctx context.Context) (*export.Artifact, error) {
	return s.exporter.Export(ctx)
}

// ExportTo exports the last diagram and saves it through sink.
func (s *Studio) ExportTo(ctx context.Context, sink export.Sink) (*export.Artifact, error) {
	return s.exporter.ExportTo(ctx, sink)
}

// Abandon invalidates the in-flight compilation, if any.
func (s *Studio) Abandon() bool {
	return s.orchestrator.Abandon()
}

// Snapshot returns the orchestrator state.
func (s *Studio) Snapshot() generation.Snapshot {
	return s.orchestrator.Snapshot()
}

// Close disposes the preview realm.
func (s *Studio) Close() error {
	if s.sandbox == nil {
		return nil
	}
	return s.sandbox.Close()
}
