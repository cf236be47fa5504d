package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/bpmngen/pkg/domain"
)

// GraphOverlay marks elements to visualize on the graph.
type GraphOverlay struct {
	// Flagged elements are drawn with a warning style (e.g. unknown types).
	Flagged []string
}

// GenerateMermaid produces a Mermaid flowchart of a validated definition.
// Pools and lanes become nested subgraphs. Shapes follow BPMN semantics:
// - Events: ((Circle))
// - Gateways: {Diamond}
// - Service tasks: [[Subroutine]]
// - User/manual tasks: [/Parallelogram/]
// - Default: [Rectangle]
func GenerateMermaid(def *domain.WorkflowDefinition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if def == nil {
		return sb.String()
	}

	for _, pool := range def.Pools {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID(pool.ID), label(pool.Name, pool.ID))
		for _, lane := range pool.Lanes {
			fmt.Fprintf(&sb, "        subgraph %s[\"%s\"]\n", sanitizeMermaidID(lane.ID), label(lane.Name, lane.ID))
			for _, el := range lane.Elements {
				opener, closer := shape(el.Type)
				fmt.Fprintf(&sb, "            %s%s\"%s\"%s\n", sanitizeMermaidID(el.ID), opener, elementLabel(el), closer)
			}
			sb.WriteString("        end\n")
		}
		sb.WriteString("    end\n")

		for _, f := range pool.Flows {
			arrow := "-->"
			text := f.Name
			if f.Condition != "" {
				if text != "" {
					text += ": "
				}
				text += f.Condition
			}
			if text != "" {
				// Escape double quotes for the Mermaid label
				arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(text, "\"", "'"))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(f.Source), arrow, sanitizeMermaidID(f.Target))
		}
	}

	if overlay != nil && len(overlay.Flagged) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef flagged fill:#fff3e0,stroke:#e65100,stroke-width:2px,stroke-dasharray:4,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.Flagged {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s flagged;\n", safeID)
			}
		}
	}

	return sb.String()
}

func shape(elementType string) (string, string) {
	switch elementType {
	case domain.ElementStartEvent, domain.ElementEndEvent, domain.ElementIntermediateCatchEvent, domain.ElementIntermediateThrowEvent:
		return "((", "))"
	case domain.ElementExclusiveGateway, domain.ElementParallelGateway, domain.ElementInclusiveGateway:
		return "{", "}"
	case domain.ElementServiceTask:
		return "[[", "]]"
	case domain.ElementUserTask, domain.ElementManualTask:
		return "[/", "/]"
	default:
		return "[", "]"
	}
}

// elementLabel names the element and, for tasks, who it is assigned to.
func elementLabel(el domain.Element) string {
	text := label(el.Name, el.ID)
	if len(el.Attributes) == 0 || domain.IsGateway(el.Type) {
		return text
	}
	var attrs domain.TaskAttributes
	if err := el.DecodeAttributes(&attrs); err != nil || attrs.Assignee == "" {
		return text
	}
	return text + " (@" + strings.ReplaceAll(attrs.Assignee, "\"", "'") + ")"
}

func label(name, id string) string {
	if name == "" {
		name = id
	}
	return strings.ReplaceAll(name, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	// "end" closes a subgraph in Mermaid and cannot be a node id
	if strings.EqualFold(s, "end") {
		s += "_"
	}
	return s
}
