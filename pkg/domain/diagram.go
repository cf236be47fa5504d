package domain

import "time"

// Diagram is the result of a successful compilation.
// Markup is the compiler's BPMN XML, kept byte-for-byte.
type Diagram struct {
	Token      uint64    `json:"token"`
	Name       string    `json:"name,omitempty"`
	Markup     string    `json:"markup"`
	CompiledAt time.Time `json:"compiled_at"`
}
