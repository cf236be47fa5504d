package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/bpmngen/internal/logging"
	"github.com/aretw0/bpmngen/pkg/compiler"
	"github.com/aretw0/bpmngen/pkg/domain"
	"github.com/aretw0/bpmngen/pkg/ports"
)

// Compiler turns definition text into BPMN XML.
// *compiler.Client is the production implementation.
type Compiler interface {
	Compile(ctx context.Context, source string) (string, error)
}

// Orchestrator owns the single in-flight compilation request.
//
// At most one request is outstanding at a time: Generate returns domain.ErrBusy
// while another call is requesting. Every request gets a monotonically
// increasing token and a response is only applied if its token is still the
// latest issued one, so a request invalidated by Abandon can never overwrite a
// newer result.
type Orchestrator struct {
	compiler Compiler
	store    ports.DiagramStore
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time

	// applyMu is held from the token check until the result is persisted, so
	// an older applied result can never be saved after a newer one.
	applyMu sync.Mutex

	mu      sync.Mutex
	state   State
	issued  uint64
	diagram *domain.Diagram
	lastErr error
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithStore persists every applied diagram.
func WithStore(store ports.DiagramStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger configures a logger for the Orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the time source used to stamp diagrams.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator in StateIdle.
func New(c Compiler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		compiler: c,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate compiles def and, if the result is still current, applies it.
//
// It returns domain.ErrBusy without touching the transport when a request is
// already in flight, and domain.ErrSuperseded when this request was invalidated
// while it was outstanding. Other errors are classified compiler errors
// (*compiler.NetworkError, *compiler.RemoteValidationError, *compiler.UnknownError).
func (o *Orchestrator) Generate(ctx context.Context, def *domain.WorkflowDefinition) (*domain.Diagram, error) {
	if def == nil {
		return nil, errors.New("generate: definition is required")
	}

	o.mu.Lock()
	if o.state == StateRequesting {
		inflight := o.issued
		o.mu.Unlock()
		o.logger.Debug("Generate: rejected, request in flight", "token", inflight)
		return nil, domain.ErrBusy
	}
	o.issued++
	token := o.issued
	o.state = StateRequesting
	o.lastErr = nil
	o.mu.Unlock()

	start := o.now()
	o.logger.Info("Generate: request issued", "token", token, "name", def.Name)
	if o.hooks.OnGenerateStart != nil {
		o.hooks.OnGenerateStart(ctx, &domain.GenerateEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventGenerateStart},
			Token:     token,
			Name:      def.Name,
		})
	}

	markup, err := o.compile(ctx, def.Source)
	if err != nil {
		err = classify(err)
	}

	o.applyMu.Lock()
	o.mu.Lock()
	if token != o.issued {
		o.mu.Unlock()
		o.applyMu.Unlock()
		o.discarded(ctx, token, def.Name, start, err)
		return nil, domain.ErrSuperseded
	}

	var diagram *domain.Diagram
	if err != nil {
		o.state = StateFailed
		o.lastErr = err
	} else {
		diagram = &domain.Diagram{
			Token:      token,
			Name:       def.Name,
			Markup:     markup,
			CompiledAt: o.now(),
		}
		o.state = StateSucceeded
		o.diagram = diagram
	}
	o.mu.Unlock()

	if diagram != nil && o.store != nil {
		// Persistence failures do not undo the applied result; export reads the store,
		// so they are logged loudly.
		if serr := o.store.Save(ctx, diagram); serr != nil {
			o.logger.Error("Generate: failed to persist diagram", "error", serr, "token", token)
		}
	}
	o.applyMu.Unlock()

	o.finished(ctx, token, def.Name, start, err)
	if err != nil {
		return nil, err
	}
	return cloneDiagram(diagram), nil
}

// Abandon invalidates the in-flight request, if any, and returns to StateIdle.
// The transport call keeps running but its result will be discarded.
// It reports whether a request was abandoned.
func (o *Orchestrator) Abandon() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateRequesting {
		return false
	}
	o.issued++
	o.state = StateIdle
	o.logger.Info("Abandon: in-flight request invalidated", "token", o.issued-1)
	return true
}

// Snapshot returns a consistent copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		State:   o.state,
		Token:   o.issued,
		Diagram: cloneDiagram(o.diagram),
		Err:     o.lastErr,
	}
}

// LastDiagram returns the last successfully applied diagram.
func (o *Orchestrator) LastDiagram() (*domain.Diagram, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.diagram == nil {
		return nil, false
	}
	return cloneDiagram(o.diagram), true
}

// Busy reports whether a request is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == StateRequesting
}

func (o *Orchestrator) discarded(ctx context.Context, token uint64, name string, start time.Time, err error) {
	o.logger.Info("Generate: stale result discarded", "token", token, "error", err)
	if o.hooks.OnResultDiscarded != nil {
		o.hooks.OnResultDiscarded(ctx, &domain.GenerateEvent{
			EventBase: domain.EventBase{Timestamp: o.now(), Type: domain.EventResultDiscarded},
			Token:     token,
			Name:      name,
			Outcome:   "discarded",
			Err:       err,
			Duration:  o.now().Sub(start),
		})
	}
}

func (o *Orchestrator) finished(ctx context.Context, token uint64, name string, start time.Time, err error) {
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		o.logger.Warn("Generate: request failed", "token", token, "class", compiler.Classify(err), "error", err)
	} else {
		o.logger.Info("Generate: request succeeded", "token", token)
	}
	if o.hooks.OnGenerateEnd != nil {
		o.hooks.OnGenerateEnd(ctx, &domain.GenerateEvent{
			EventBase: domain.EventBase{Timestamp: o.now(), Type: domain.EventGenerateEnd},
			Token:     token,
			Name:      name,
			Outcome:   outcome,
			Err:       err,
			Duration:  o.now().Sub(start),
		})
	}
}

// compile calls the compiler, turning a panic into an *compiler.UnknownError so
// the orchestrator never stays stuck in StateRequesting.
func (o *Orchestrator) compile(ctx context.Context, source string) (markup string, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Generate: compiler panicked", "panic", r)
			err = &compiler.UnknownError{Cause: fmt.Errorf("compiler panicked: %v", r)}
		}
	}()
	return o.compiler.Compile(ctx, source)
}

// classify keeps compiler errors and wraps everything else as unknown.
func classify(err error) error {
	var netErr *compiler.NetworkError
	var remoteErr *compiler.RemoteValidationError
	var unknownErr *compiler.UnknownError
	switch {
	case errors.As(err, &netErr), errors.As(err, &remoteErr), errors.As(err, &unknownErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &compiler.NetworkError{Cause: err}
	default:
		return &compiler.UnknownError{Cause: err}
	}
}

func cloneDiagram(d *domain.Diagram) *domain.Diagram {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
