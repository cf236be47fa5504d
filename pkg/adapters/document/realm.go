// Package document renders diagrams into a standalone HTML document.
//
// Every realm owns a fresh document. A successful render embeds the diagram
// as inline SVG filtered through a bluemonday policy; a rejected import
// replaces the body with an escaped error block.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/bpmngen/pkg/bpmn"
	"github.com/aretw0/bpmngen/pkg/sandbox"
	"github.com/google/uuid"
)

// ErrDisposed is returned when a disposed realm is written to.
var ErrDisposed = errors.New("document realm disposed")

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; }
.canvas { width: 100%; height: 100vh; overflow: hidden; }
.error { margin: 2rem; padding: 1rem; border: 1px solid #ef4444; color: #991b1b; background: #fef2f2; white-space: pre-wrap; }
</style>
</head>
<body data-realm="{{.RealmID}}">
{{- if .Error}}
<div class="error" role="alert">{{.Error}}</div>
{{- else if .Canvas}}
<div class="canvas">{{.Canvas}}</div>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Title   string
	RealmID string
	Canvas  template.HTML
	Error   string
}

// Realm is one HTML document.
type Realm struct {
	id       string
	title    string
	viewport bpmn.Viewport
	path     string

	mu       sync.Mutex
	viewer   *bpmn.Viewer
	canvas   template.HTML
	errText  string
	disposed bool
}

// Option configures a document Realm.
type Option func(*Realm)

// WithViewport sets the drawing area.
func WithViewport(v bpmn.Viewport) Option {
	return func(r *Realm) {
		r.viewport = v
	}
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(r *Realm) {
		r.title = title
	}
}

// WithOutputFile writes the document to path after every change.
func WithOutputFile(path string) Option {
	return func(r *Realm) {
		r.path = path
	}
}

// New creates an empty document realm.
func New(opts ...Option) *Realm {
	r := &Realm{
		id:       uuid.NewString(),
		title:    "BPMN diagram",
		viewport: bpmn.DefaultViewport,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Factory returns a sandbox.RealmFactory producing document realms.
// The onCreate callback, when set, receives every new realm.
func Factory(onCreate func(*Realm), opts ...Option) sandbox.RealmFactory {
	return func(context.Context) (sandbox.Realm, error) {
		r := New(opts...)
		if onCreate != nil {
			onCreate(r)
		}
		return r, nil
	}
}

// ID implements sandbox.Realm.
func (r *Realm) ID() string { return r.id }

// Bootstrap mounts a viewer on the document.
func (r *Realm) Bootstrap(context.Context) (sandbox.Viewer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return nil, ErrDisposed
	}
	// The output file starts blank, so a failed bootstrap leaves no earlier diagram behind.
	if err := r.flush(); err != nil {
		return nil, err
	}
	viewer, err := bpmn.NewViewer(r.viewport)
	if err != nil {
		return nil, err
	}
	r.viewer = viewer
	return sandbox.WrapViewer(viewer), nil
}

// Paint embeds the positioned diagram into the document.
func (r *Realm) Paint(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	if r.viewer == nil {
		return errors.New("document realm not bootstrapped")
	}
	svg, err := r.viewer.Canvas().SVG()
	if err != nil {
		return err
	}
	r.canvas = template.HTML(sanitizeDiagram(svg))
	r.errText = ""
	return r.flush()
}

// ShowError replaces the document body with an inline error. The message is
// plain text; html/template escapes it in the error block.
func (r *Realm) ShowError(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	r.canvas = ""
	r.errText = message
	return r.flush()
}

// Dispose drops the viewer and the document content.
func (r *Realm) Dispose() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
	r.viewer = nil
	r.canvas = ""
	r.errText = ""
	return nil
}

// HTML returns the current document.
func (r *Realm) HTML() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.document()
	return string(b), err
}

func (r *Realm) document() ([]byte, error) {
	var buf bytes.Buffer
	err := page.Execute(&buf, pageData{
		Title:   r.title,
		RealmID: r.id,
		Canvas:  r.canvas,
		Error:   r.errText,
	})
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// flush writes the document to the output file, if any, through a temp file.
func (r *Realm) flush() error {
	if r.path == "" {
		return nil
	}
	b, err := r.document()
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".preview-*.html")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
