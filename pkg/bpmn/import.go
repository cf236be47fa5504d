package bpmn

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ImportResult carries the non-fatal findings of an import.
type ImportResult struct {
	Warnings []string
}

// ImportError is a rejected import. The previous model, if any, is discarded.
type ImportError struct {
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ImportError) Unwrap() error { return e.Cause }

// xmlNode is a generic element tree; BPMN documents are walked by local name.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (n *xmlNode) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) float(local string) float64 {
	f, _ := strconv.ParseFloat(n.attr(local), 64)
	return f
}

// importer accumulates the model and warnings for a single document.
type importer struct {
	model    *Model
	warnings []string
	ids      map[string]bool
}

func (im *importer) warn(format string, args ...any) {
	im.warnings = append(im.warnings, fmt.Sprintf(format, args...))
}

func (im *importer) register(id string) {
	if id == "" {
		return
	}
	if im.ids[id] {
		im.warn("duplicate id <%s>", id)
		return
	}
	im.ids[id] = true
}

// parseDocument turns markup into a model. It is the pure part of ImportXML.
func parseDocument(markup string) (*Model, []string, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, nil, &ImportError{Message: "empty document"}
	}

	var root xmlNode
	if err := xml.Unmarshal([]byte(markup), &root); err != nil {
		return nil, nil, &ImportError{Message: "unparsable content detected", Cause: err}
	}
	if root.XMLName.Local != "definitions" || root.XMLName.Space != NamespaceModel {
		return nil, nil, &ImportError{
			Message: fmt.Sprintf("unexpected root element <%s>, expected BPMN 2.0 <definitions>", root.XMLName.Local),
		}
	}

	im := &importer{
		model: &Model{ID: root.attr("id")},
		ids:   make(map[string]bool),
	}

	var planes []*xmlNode
	for i := range root.Children {
		child := &root.Children[i]
		switch child.XMLName.Local {
		case "collaboration":
			im.collaboration(child)
		case "process":
			im.process(child)
		case "BPMNDiagram":
			for j := range child.Children {
				if child.Children[j].XMLName.Local == "BPMNPlane" {
					planes = append(planes, &child.Children[j])
				}
			}
		}
	}

	if len(im.model.Processes) == 0 && len(im.model.Participants) == 0 {
		return nil, nil, &ImportError{Message: "no process to display"}
	}
	if len(planes) == 0 {
		return nil, nil, &ImportError{Message: "no diagram to display"}
	}

	for _, plane := range planes {
		im.plane(plane)
	}
	im.resolve()

	return im.model, im.warnings, nil
}

func (im *importer) collaboration(n *xmlNode) {
	im.register(n.attr("id"))
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local != "participant" {
			continue
		}
		im.register(c.attr("id"))
		im.model.Participants = append(im.model.Participants, Participant{
			ID:         c.attr("id"),
			Name:       c.attr("name"),
			ProcessRef: c.attr("processRef"),
		})
	}
}

func (im *importer) process(n *xmlNode) {
	p := Process{ID: n.attr("id")}
	im.register(p.ID)

	for i := range n.Children {
		c := &n.Children[i]
		kind := c.XMLName.Local
		switch {
		case kind == "laneSet":
			im.register(c.attr("id"))
			for j := range c.Children {
				if c.Children[j].XMLName.Local == "lane" {
					p.Lanes = append(p.Lanes, im.lane(&c.Children[j]))
				}
			}
		case kind == "sequenceFlow":
			im.register(c.attr("id"))
			p.Flows = append(p.Flows, SequenceFlow{
				ID:        c.attr("id"),
				Name:      c.attr("name"),
				SourceRef: c.attr("sourceRef"),
				TargetRef: c.attr("targetRef"),
			})
		case passiveKinds[kind]:
		default:
			category, ok := flowNodeKinds[kind]
			if !ok {
				im.warn("unsupported element <%s> (id %q) ignored", kind, c.attr("id"))
				continue
			}
			im.register(c.attr("id"))
			p.Nodes = append(p.Nodes, FlowNode{
				ID:       c.attr("id"),
				Name:     c.attr("name"),
				Kind:     kind,
				Category: category,
			})
		}
	}
	im.model.Processes = append(im.model.Processes, p)
}

func (im *importer) lane(n *xmlNode) Lane {
	l := Lane{ID: n.attr("id"), Name: n.attr("name")}
	im.register(l.ID)
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == "flowNodeRef" {
			l.NodeRefs = append(l.NodeRefs, strings.TrimSpace(c.Text))
		}
	}
	return l
}

func (im *importer) plane(n *xmlNode) {
	if ref := n.attr("bpmnElement"); ref != "" && !im.ids[ref] {
		im.warn("unresolved reference <%s> on diagram plane", ref)
	}
	for i := range n.Children {
		c := &n.Children[i]
		switch c.XMLName.Local {
		case "BPMNShape":
			s := Shape{ID: c.attr("id"), ElementID: c.attr("bpmnElement")}
			for j := range c.Children {
				if b := &c.Children[j]; b.XMLName.Local == "Bounds" {
					s.Bounds = Rect{X: b.float("x"), Y: b.float("y"), Width: b.float("width"), Height: b.float("height")}
				}
			}
			im.model.Shapes = append(im.model.Shapes, s)
		case "BPMNEdge":
			e := Edge{ID: c.attr("id"), ElementID: c.attr("bpmnElement")}
			for j := range c.Children {
				if w := &c.Children[j]; w.XMLName.Local == "waypoint" {
					e.Waypoints = append(e.Waypoints, Point{X: w.float("x"), Y: w.float("y")})
				}
			}
			im.model.Edges = append(im.model.Edges, e)
		}
	}
}

// resolve reports references that point nowhere and nodes that cannot be drawn.
func (im *importer) resolve() {
	shaped := make(map[string]bool, len(im.model.Shapes))
	for _, s := range im.model.Shapes {
		if !im.ids[s.ElementID] {
			im.warn("unresolved reference <%s> on shape %q", s.ElementID, s.ID)
			continue
		}
		shaped[s.ElementID] = true
	}
	for _, e := range im.model.Edges {
		if !im.ids[e.ElementID] {
			im.warn("unresolved reference <%s> on edge %q", e.ElementID, e.ID)
		}
	}
	for _, p := range im.model.Processes {
		for _, f := range p.Flows {
			if !im.ids[f.SourceRef] {
				im.warn("unresolved sourceRef <%s> on flow %q", f.SourceRef, f.ID)
			}
			if !im.ids[f.TargetRef] {
				im.warn("unresolved targetRef <%s> on flow %q", f.TargetRef, f.ID)
			}
		}
		for _, n := range p.Nodes {
			if !shaped[n.ID] {
				im.warn("element <%s> has no diagram shape and is not drawn", n.ID)
			}
		}
	}
}

// checkContext lets imports be abandoned between the parse and apply steps.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ImportError{Message: "import canceled", Cause: err}
	}
	return nil
}
