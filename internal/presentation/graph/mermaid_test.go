package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/bpmngen/internal/presentation/graph"
	"github.com/aretw0/bpmngen/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func definition() *domain.WorkflowDefinition {
	return &domain.WorkflowDefinition{
		Name: "Orders",
		Pools: []domain.Pool{{
			ID:   "P1",
			Name: "Order Management",
			Lanes: []domain.Lane{{
				ID:   "L1",
				Name: "Reception",
				Elements: []domain.Element{
					{ID: "start", Type: domain.ElementStartEvent, Name: "Order Received"},
					{ID: "check", Type: domain.ElementServiceTask, Name: "Check \"stock\""},
					{ID: "approve", Type: domain.ElementUserTask},
					{ID: "gw-1", Type: domain.ElementExclusiveGateway, Name: "OK?"},
					{ID: "note", Type: "dataObject"},
					{ID: "end", Type: domain.ElementEndEvent},
				},
			}},
			Flows: []domain.Flow{
				{ID: "f1", Source: "start", Target: "check"},
				{ID: "f2", Source: "gw-1", Target: "end", Name: "yes", Condition: "stock > 0"},
			},
		}},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(definition(), nil)

	for _, want := range []string{
		"graph LR\n",
		`subgraph P1["Order Management"]`,
		`subgraph L1["Reception"]`,
		`start(("Order Received"))`,
		`check[["Check 'stock'"]]`,
		`approve[/"approve"/]`,
		`gw_1{"OK?"}`,
		`note["note"]`,
		`end_(("end"))`,
		"start --> check",
		`gw_1 -- "yes: stock > 0" --> end_`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(definition(), &graph.GraphOverlay{Flagged: []string{"note", "note"}})
	assert.Contains(t, out, "classDef flagged")
	assert.Equal(t, 1, strings.Count(out, "class note flagged;"))
}

func TestGenerateMermaid_Nil(t *testing.T) {
	assert.Equal(t, "graph LR\n", graph.GenerateMermaid(nil, nil))
}

func TestGenerateMermaid_TaskAssignee(t *testing.T) {
	def := definition()
	elements := def.Pools[0].Lanes[0].Elements
	elements[2].Name = "Approve"
	elements[2].Attributes = map[string]any{"assignee": "alice", "candidates": []any{"ops"}}
	elements[3].Attributes = map[string]any{"default": "f2"}

	out := graph.GenerateMermaid(def, nil)
	assert.Contains(t, out, `approve[/"Approve (@alice)"/]`)
	assert.Contains(t, out, `gw_1{"OK?"}`)
}
