package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/bpmngen/internal/logging"
	"github.com/aretw0/bpmngen/pkg/bpmn"
	"github.com/aretw0/bpmngen/pkg/domain"
)

// Status is the visible state of the sandbox after a render attempt.
type Status int

const (
	// StatusEmpty means nothing has been rendered yet, or the sandbox was closed.
	StatusEmpty Status = iota
	// StatusRendered means the diagram is displayed, fit to the viewport.
	StatusRendered
	// StatusErrorDisplayed means the realm shows an inline import error.
	StatusErrorDisplayed
	// StatusBootstrapFailed means the rendering library could not be loaded.
	StatusBootstrapFailed
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusRendered:
		return "rendered"
	case StatusErrorDisplayed:
		return "error-displayed"
	case StatusBootstrapFailed:
		return "bootstrap-failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome summarizes one render attempt.
type Outcome struct {
	RealmID  string
	Status   Status
	Warnings []string
}

// Controller owns the rendering realm. It is the only component that writes
// into a realm; every Render disposes the previous realm and starts a new one.
type Controller struct {
	factory RealmFactory
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	mu      sync.Mutex
	current Realm
	status  Status
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// New creates a Controller that acquires realms from factory.
func New(factory RealmFactory, opts ...Option) *Controller {
	c := &Controller{
		factory: factory,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render displays markup in a fresh realm.
//
// A bootstrap failure returns *BootstrapError and a rejected import returns
// *ImportError after the rejection message has been shown inside the realm.
// Import warnings are logged and reported in the Outcome only.
func (c *Controller) Render(ctx context.Context, markup string) (*Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.disposeCurrent()

	realm, err := c.factory(ctx)
	if err != nil {
		return c.finish(ctx, &Outcome{Status: StatusBootstrapFailed}, &BootstrapError{Cause: err})
	}
	c.current = realm
	out := &Outcome{RealmID: realm.ID()}
	logger := c.logger.With("realm", out.RealmID)

	viewer, err := realm.Bootstrap(ctx)
	if err != nil {
		out.Status = StatusBootstrapFailed
		return c.finish(ctx, out, &BootstrapError{RealmID: out.RealmID, Cause: err})
	}

	res, err := viewer.ImportXML(ctx, markup)
	if err != nil {
		return c.reject(ctx, realm, out, asImportError(err))
	}
	if res != nil {
		out.Warnings = res.Warnings
	}
	for _, w := range out.Warnings {
		logger.Warn("Diagram import warning", "warning", w)
	}

	canvas := viewer.Canvas()
	if err := canvas.Zoom(bpmn.ZoomFitViewport); err != nil {
		return c.reject(ctx, realm, out, &ImportError{Message: "fit to viewport failed", Cause: err})
	}
	if err := canvas.Scroll(0, 0); err != nil {
		return c.reject(ctx, realm, out, &ImportError{Message: "reset scroll failed", Cause: err})
	}
	if p, ok := realm.(Painter); ok {
		if err := p.Paint(ctx); err != nil {
			return c.reject(ctx, realm, out, &ImportError{Message: "paint failed", Cause: err})
		}
	}

	out.Status = StatusRendered
	logger.Debug("Diagram rendered", "warnings", len(out.Warnings))
	return c.finish(ctx, out, nil)
}

// reject replaces the realm content with the error message. The realm stays
// in the error-displayed state until the next Render disposes it.
func (c *Controller) reject(ctx context.Context, realm Realm, out *Outcome, importErr *ImportError) (*Outcome, error) {
	out.Status = StatusErrorDisplayed
	if err := realm.ShowError(ctx, importErr.Error()); err != nil {
		c.logger.Error("Failed to display import error", "realm", out.RealmID, "error", err)
	}
	return c.finish(ctx, out, importErr)
}

func (c *Controller) finish(ctx context.Context, out *Outcome, err error) (*Outcome, error) {
	c.status = out.Status
	if err != nil {
		c.logger.Warn("Render failed", "realm", out.RealmID, "status", out.Status.String(), "error", err)
	}
	if c.hooks.OnRender != nil {
		c.hooks.OnRender(ctx, &domain.RenderEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRender},
			RealmID:   out.RealmID,
			Status:    out.Status.String(),
			Warnings:  len(out.Warnings),
			Err:       err,
		})
	}
	return out, err
}

// disposeCurrent tears down the active realm. Dispose errors are logged and
// never prevent the next realm from being created.
func (c *Controller) disposeCurrent() {
	if c.current == nil {
		return
	}
	if err := c.current.Dispose(); err != nil {
		c.logger.Warn("Failed to dispose realm", "realm", c.current.ID(), "error", err)
	}
	c.current = nil
	c.status = StatusEmpty
}

// Status returns the state left by the last render.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Current returns the active realm, or nil.
func (c *Controller) Current() Realm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close disposes the active realm.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	err := c.current.Dispose()
	c.current = nil
	c.status = StatusEmpty
	return err
}
