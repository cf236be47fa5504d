// Package terminal renders diagrams as a markdown outline on a terminal.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/bpmngen/internal/presentation/tui"
	"github.com/aretw0/bpmngen/pkg/bpmn"
	"github.com/aretw0/bpmngen/pkg/sandbox"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

// ErrDisposed is returned when a disposed realm is written to.
var ErrDisposed = errors.New("terminal realm disposed")

// cellWidth is the number of diagram units drawn per terminal column.
const cellWidth = 8

// Realm writes one diagram (or one error) to a terminal.
type Realm struct {
	id      string
	out     io.Writer
	width   int
	style   string
	profile termenv.Profile

	mu       sync.Mutex
	viewer   *bpmn.Viewer
	render   func(string) (string, error)
	disposed bool
}

// Option configures a terminal Realm.
type Option func(*Realm)

// WithWidth fixes the column count instead of asking the terminal.
func WithWidth(cols int) Option {
	return func(r *Realm) {
		r.width = cols
	}
}

// WithStyle selects a glamour standard style ("dark", "light", "notty", ...).
func WithStyle(style string) Option {
	return func(r *Realm) {
		r.style = style
	}
}

// WithColorProfile overrides the color profile used for error output.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *Realm) {
		r.profile = p
	}
}

// New creates a terminal realm writing to out.
func New(out io.Writer, opts ...Option) *Realm {
	r := &Realm{
		id:      uuid.NewString(),
		out:     out,
		profile: termenv.ColorProfile(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.width <= 0 {
		r.width = tui.Width(out, 100)
	}
	return r
}

// Factory returns a sandbox.RealmFactory producing terminal realms.
func Factory(out io.Writer, opts ...Option) sandbox.RealmFactory {
	return func(context.Context) (sandbox.Realm, error) {
		return New(out, opts...), nil
	}
}

// ID implements sandbox.Realm.
func (r *Realm) ID() string { return r.id }

// Bootstrap loads the markdown renderer and a viewer sized to the terminal.
func (r *Realm) Bootstrap(context.Context) (sandbox.Viewer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return nil, ErrDisposed
	}

	render, err := tui.NewRenderer(r.width, r.style)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	viewer, err := bpmn.NewViewer(bpmn.Viewport{
		Width:  float64(r.width * cellWidth),
		Height: bpmn.DefaultViewport.Height,
	})
	if err != nil {
		return nil, err
	}
	r.render = render
	r.viewer = viewer
	return sandbox.WrapViewer(viewer), nil
}

// Paint writes the outline of the imported diagram.
func (r *Realm) Paint(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	if r.viewer == nil {
		return errors.New("terminal realm not bootstrapped")
	}
	m := r.viewer.Model()
	if m == nil {
		return bpmn.ErrNoModel
	}

	out, err := r.render(outline(m, r.viewer.Canvas().ZoomLevel()))
	if err != nil {
		return err
	}
	_, err = io.WriteString(r.out, out)
	return err
}

// ShowError clears the screen and prints the message in place of the diagram.
func (r *Realm) ShowError(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	termenv.NewOutput(r.out, termenv.WithProfile(r.profile)).ClearScreen()
	line := r.profile.String("✗ Diagram could not be displayed: " + message).
		Foreground(r.profile.Color("#ef4444")).
		Bold()
	_, err := fmt.Fprintln(r.out, line)
	return err
}

// Dispose releases the viewer. It is safe to call more than once.
func (r *Realm) Dispose() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
	r.viewer = nil
	r.render = nil
	return nil
}

func outline(m *bpmn.Model, zoom float64) string {
	var sb strings.Builder

	title := m.ID
	if title == "" {
		title = "Diagram"
	}
	nodes, flows := 0, 0
	for _, p := range m.Processes {
		nodes += len(p.Nodes)
		flows += len(p.Flows)
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "*%d elements, %d flows, zoom %.0f%%*\n\n", nodes, flows, zoom*100)

	pools := make(map[string]string)
	for _, part := range m.Participants {
		pools[part.ProcessRef] = part.Name
	}

	for _, p := range m.Processes {
		heading := pools[p.ID]
		if heading == "" {
			heading = p.ID
		}
		fmt.Fprintf(&sb, "## %s\n\n", heading)

		placed := make(map[string]bool)
		for _, l := range p.Lanes {
			name := l.Name
			if name == "" {
				name = l.ID
			}
			fmt.Fprintf(&sb, "### %s\n\n", name)
			for _, ref := range l.NodeRefs {
				if n, ok := m.Node(ref); ok {
					sb.WriteString(nodeLine(n))
					placed[ref] = true
				}
			}
			sb.WriteString("\n")
		}

		var loose []string
		for _, n := range p.Nodes {
			if !placed[n.ID] {
				loose = append(loose, nodeLine(n))
			}
		}
		if len(loose) > 0 {
			sb.WriteString(strings.Join(loose, ""))
			sb.WriteString("\n")
		}

		if len(p.Flows) > 0 {
			sb.WriteString("**Flows**\n\n")
			for _, f := range p.Flows {
				fmt.Fprintf(&sb, "- %s → %s", f.SourceRef, f.TargetRef)
				if f.Name != "" {
					fmt.Fprintf(&sb, " (%s)", f.Name)
				}
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func nodeLine(n bpmn.FlowNode) string {
	if n.Name == "" {
		return fmt.Sprintf("- `%s` %s\n", n.Kind, n.ID)
	}
	return fmt.Sprintf("- `%s` %s: %s\n", n.Kind, n.ID, n.Name)
}
