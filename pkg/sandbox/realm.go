package sandbox

import (
	"context"

	"github.com/aretw0/bpmngen/pkg/bpmn"
)

// Canvas is the canvas control of a rendering library.
type Canvas interface {
	Zoom(mode string) error
	Scroll(x, y float64) error
}

// Viewer is the rendering library as seen from inside a realm.
type Viewer interface {
	ImportXML(ctx context.Context, markup string) (*bpmn.ImportResult, error)
	Canvas() Canvas
}

// Realm is an isolated, disposable rendering context.
// A realm is used for exactly one render and is never reused.
type Realm interface {
	// ID identifies the realm in logs and events.
	ID() string
	// Bootstrap loads the rendering library inside the realm.
	Bootstrap(ctx context.Context) (Viewer, error)
	// ShowError replaces the realm's visible content with an inline error.
	ShowError(ctx context.Context, message string) error
	// Dispose tears the realm down. It must be safe to call more than once.
	Dispose() error
}

// Painter is implemented by realms that need an explicit paint step once the
// canvas has been positioned.
type Painter interface {
	Paint(ctx context.Context) error
}

// RealmFactory creates a fresh realm.
type RealmFactory func(ctx context.Context) (Realm, error)

// WrapViewer adapts a *bpmn.Viewer to the Viewer interface.
func WrapViewer(v *bpmn.Viewer) Viewer {
	return bpmnViewer{v}
}

type bpmnViewer struct {
	*bpmn.Viewer
}

func (v bpmnViewer) Canvas() Canvas {
	return v.Viewer.Canvas()
}
