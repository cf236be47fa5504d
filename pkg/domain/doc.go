/*
Package domain contains the core models shared by every bpmngen component.

It is kept free of I/O so that the validator, orchestrator, sandbox and exporter
can depend on it without pulling each other in.

# Key Entities

  - WorkflowDefinition: the validated pools/lanes/elements/flows graph.
  - Diagram: a successful compilation result (opaque BPMN XML plus its request token).
  - LifecycleHooks: callbacks fired by the orchestrator and the render sandbox.
*/
package domain
