package bpmn

import "math"

// XML namespaces of BPMN 2.0 documents.
const (
	NamespaceModel = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	NamespaceDI    = "http://www.omg.org/spec/BPMN/20100524/DI"
	NamespaceDC    = "http://www.omg.org/spec/DD/20100524/DC"
)

// Category groups flow node kinds by how they are drawn.
type Category int

const (
	CategoryActivity Category = iota
	CategoryEvent
	CategoryGateway
)

var flowNodeKinds = map[string]Category{
	"task":                   CategoryActivity,
	"serviceTask":            CategoryActivity,
	"userTask":               CategoryActivity,
	"manualTask":             CategoryActivity,
	"scriptTask":             CategoryActivity,
	"sendTask":               CategoryActivity,
	"receiveTask":            CategoryActivity,
	"businessRuleTask":       CategoryActivity,
	"callActivity":           CategoryActivity,
	"subProcess":             CategoryActivity,
	"startEvent":             CategoryEvent,
	"endEvent":               CategoryEvent,
	"intermediateCatchEvent": CategoryEvent,
	"intermediateThrowEvent": CategoryEvent,
	"boundaryEvent":          CategoryEvent,
	"exclusiveGateway":       CategoryGateway,
	"parallelGateway":        CategoryGateway,
	"inclusiveGateway":       CategoryGateway,
	"eventBasedGateway":      CategoryGateway,
	"complexGateway":         CategoryGateway,
}

// Process children that carry no visual node of their own.
var passiveKinds = map[string]bool{
	"documentation":     true,
	"extensionElements": true,
	"incoming":          true,
	"outgoing":          true,
	"property":          true,
	"dataObject":        true,
	"ioSpecification":   true,
}

// Model is an imported BPMN document.
type Model struct {
	ID           string
	Participants []Participant
	Processes    []Process
	Shapes       []Shape
	Edges        []Edge
}

// Participant is a pool of a collaboration.
type Participant struct {
	ID         string
	Name       string
	ProcessRef string
}

// Process holds the semantic content of one process, in document order.
type Process struct {
	ID    string
	Lanes []Lane
	Nodes []FlowNode
	Flows []SequenceFlow
}

// Lane references the flow nodes drawn inside it.
type Lane struct {
	ID       string
	Name     string
	NodeRefs []string
}

// FlowNode is an event, activity or gateway.
type FlowNode struct {
	ID       string
	Name     string
	Kind     string
	Category Category
}

// SequenceFlow connects two flow nodes.
type SequenceFlow struct {
	ID        string
	Name      string
	SourceRef string
	TargetRef string
}

// Shape is the diagram interchange bounds of an element.
type Shape struct {
	ID        string
	ElementID string
	Bounds    Rect
}

// Edge is the diagram interchange path of a flow.
type Edge struct {
	ID        string
	ElementID string
	Waypoints []Point
}

// Point is a position in diagram coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box in diagram coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.X+r.Width, o.X+o.Width)
	y1 := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// BoundingBox returns the extent of every shape and edge waypoint.
func (m *Model) BoundingBox() Rect {
	var box Rect
	for _, s := range m.Shapes {
		box = box.Union(s.Bounds)
	}
	for _, e := range m.Edges {
		for _, p := range e.Waypoints {
			box = box.Union(Rect{X: p.X, Y: p.Y, Width: 1, Height: 1})
		}
	}
	return box
}

// Node finds a flow node by id across all processes.
func (m *Model) Node(id string) (FlowNode, bool) {
	for _, p := range m.Processes {
		for _, n := range p.Nodes {
			if n.ID == id {
				return n, true
			}
		}
	}
	return FlowNode{}, false
}
