package domain

import "github.com/mitchellh/mapstructure"

// Element types understood by the diagram compiler.
const (
	ElementStartEvent             = "startEvent"
	ElementEndEvent               = "endEvent"
	ElementTask                   = "task"
	ElementServiceTask            = "serviceTask"
	ElementUserTask               = "userTask"
	ElementManualTask             = "manualTask"
	ElementExclusiveGateway       = "exclusiveGateway"
	ElementParallelGateway        = "parallelGateway"
	ElementInclusiveGateway       = "inclusiveGateway"
	ElementIntermediateCatchEvent = "intermediateCatchEvent"
	ElementIntermediateThrowEvent = "intermediateThrowEvent"
)

var knownElementTypes = map[string]bool{
	ElementStartEvent:             true,
	ElementEndEvent:               true,
	ElementTask:                   true,
	ElementServiceTask:            true,
	ElementUserTask:               true,
	ElementManualTask:             true,
	ElementExclusiveGateway:       true,
	ElementParallelGateway:        true,
	ElementInclusiveGateway:       true,
	ElementIntermediateCatchEvent: true,
	ElementIntermediateThrowEvent: true,
}

// IsGateway reports whether t is one of the gateway types.
func IsGateway(t string) bool {
	switch t {
	case ElementExclusiveGateway, ElementParallelGateway, ElementInclusiveGateway:
		return true
	}
	return false
}

// IsKnownElementType reports whether the compiler has a dedicated mapping for t.
// Unknown types are still accepted and passed through.
func IsKnownElementType(t string) bool {
	return knownElementTypes[t]
}

// WorkflowDefinition is the validated, in-memory form of a user-authored workflow.
// It is rebuilt on every validation and must not be mutated after it is handed
// to the orchestrator.
type WorkflowDefinition struct {
	Name  string `json:"name" yaml:"name"`
	Pools []Pool `json:"pools" yaml:"pools"`

	// Source is the exact text the definition was parsed from.
	// The compiler receives it unchanged so that ordering survives end-to-end.
	Source string `json:"-" yaml:"-"`
}

// Pool groups lanes and the flows connecting their elements.
type Pool struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Lanes []Lane `json:"lanes" yaml:"lanes"`
	Flows []Flow `json:"flows,omitempty" yaml:"flows,omitempty"`
}

// Lane is an ordered container of elements inside a pool.
type Lane struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Element is a node of the workflow graph (event, task, gateway).
type Element struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Attributes holds every type-specific key besides id, type and name.
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Flow is a directed sequence flow between two elements of the same pool.
type Flow struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// TaskAttributes are the optional properties of task-like elements.
type TaskAttributes struct {
	Implementation string   `mapstructure:"implementation"`
	Assignee       string   `mapstructure:"assignee"`
	Candidates     []string `mapstructure:"candidates"`
	Documentation  string   `mapstructure:"documentation"`
}

// GatewayAttributes are the optional properties of gateways.
type GatewayAttributes struct {
	DefaultFlow string `mapstructure:"default"`
	Direction   string `mapstructure:"direction"`
}

// DecodeAttributes decodes the element attributes into out (a pointer to struct).
// Numeric and boolean scalars are converted leniently so YAML authors can quote them.
func (e Element) DecodeAttributes(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(e.Attributes)
}
