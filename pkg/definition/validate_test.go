package definition_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/bpmngen/pkg/definition"
	"github.com/aretw0/bpmngen/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
name: W
pools:
  - id: P1
    lanes:
      - id: L1
        elements:
          - id: E1
            type: startEvent
          - id: E2
            type: endEvent
    flows:
      - id: F1
        source: E1
        target: E2
`

func TestValidate_Minimal(t *testing.T) {
	res, err := definition.Validate([]byte(minimal))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	want := &domain.WorkflowDefinition{
		Name: "W",
		Pools: []domain.Pool{{
			ID: "P1",
			Lanes: []domain.Lane{{
				ID: "L1",
				Elements: []domain.Element{
					{ID: "E1", Type: domain.ElementStartEvent},
					{ID: "E2", Type: domain.ElementEndEvent},
				},
			}},
			Flows: []domain.Flow{{ID: "F1", Source: "E1", Target: "E2"}},
		}},
	}
	if diff := cmp.Diff(want, res.Definition, cmpopts.IgnoreFields(domain.WorkflowDefinition{}, "Source")); diff != "" {
		t.Errorf("definition mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, minimal, res.Definition.Source)
}

func TestValidate_PreservesOrder(t *testing.T) {
	src := `
name: Ordering
pools:
  - id: Zeta
    lanes:
      - id: L2
        elements:
          - {id: c, type: task}
          - {id: a, type: task}
      - id: L1
        elements:
          - {id: b, type: task}
  - id: Alpha
    lanes:
      - id: L0
        elements:
          - {id: z, type: task}
          - {id: y, type: task}
`
	res, err := definition.Validate([]byte(src))
	require.NoError(t, err)

	var pools, lanes, elements []string
	for _, p := range res.Definition.Pools {
		pools = append(pools, p.ID)
		for _, l := range p.Lanes {
			lanes = append(lanes, l.ID)
			for _, e := range l.Elements {
				elements = append(elements, e.ID)
			}
		}
	}
	assert.Equal(t, []string{"Zeta", "Alpha"}, pools)
	assert.Equal(t, []string{"L2", "L1", "L0"}, lanes)
	assert.Equal(t, []string{"c", "a", "b", "z", "y"}, elements)
}

func TestValidate_DuplicateElementID(t *testing.T) {
	src := `
name: W
pools:
  - id: P1
    lanes:
      - id: L1
        elements:
          - {id: E1, type: startEvent}
      - id: L2
        elements:
          - {id: E1, type: task}
`
	_, err := definition.Validate([]byte(src))
	require.Error(t, err)

	issues := definition.ValidationErrors(err)
	require.Len(t, issues, 1)
	assert.Equal(t, definition.KindDuplicateID, issues[0].Kind)
	assert.Equal(t, "E1", issues[0].Ref)
	assert.Contains(t, issues[0].Error(), "E1")
	assert.Equal(t, 11, issues[0].Line)
}

func TestValidate_DanglingReference(t *testing.T) {
	src := `
name: W
pools:
  - id: P1
    lanes:
      - id: L1
        elements:
          - {id: E1, type: startEvent}
          - {id: E2, type: endEvent}
    flows:
      - {id: F1, source: E1, target: E3}
`
	_, err := definition.Validate([]byte(src))
	issues := definition.ValidationErrors(err)
	require.Len(t, issues, 1)
	assert.Equal(t, definition.KindDanglingReference, issues[0].Kind)
	assert.Equal(t, "F1", issues[0].Ref)
	assert.Contains(t, issues[0].Message, "E3")
}

func TestValidate_FlowAcrossPools(t *testing.T) {
	src := `
name: W
pools:
  - id: P1
    lanes:
      - id: L1
        elements:
          - {id: A, type: task}
    flows:
      - {id: F1, source: A, target: B}
  - id: P2
    lanes:
      - id: L1
        elements:
          - {id: B, type: task}
`
	_, err := definition.Validate([]byte(src))
	issues := definition.ValidationErrors(err)
	require.Len(t, issues, 1)
	assert.Equal(t, definition.KindDanglingReference, issues[0].Kind)
	assert.Equal(t, "F1", issues[0].Ref)
	assert.Contains(t, issues[0].Message, `belongs to pool "P2"`)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	src := `
name: W
pools:
  - id: Empty
  - id: P1
    lanes:
      - id: L1
        elements:
          - {id: E1, type: task}
          - {id: E1, type: task}
          - {id: E2}
    flows:
      - {id: F1, source: E1, target: Nowhere}
      - {id: F1, source: E1}
`
	_, err := definition.Validate([]byte(src))
	require.Error(t, err)

	var aggr *definition.AggregateError
	require.ErrorAs(t, err, &aggr)

	kinds := map[definition.Kind]int{}
	for _, issue := range definition.ValidationErrors(err) {
		kinds[issue.Kind]++
	}
	assert.Equal(t, 1, kinds[definition.KindEmptyPool])
	assert.Equal(t, 2, kinds[definition.KindDuplicateID]) // element E1 and flow F1
	assert.Equal(t, 2, kinds[definition.KindMissingField]) // E2 type, F1 target
	assert.Equal(t, 1, kinds[definition.KindDanglingReference])
	assert.Contains(t, err.Error(), "6 validation errors")
}

func TestValidate_EmptyLaneIsAllowed(t *testing.T) {
	src := `
name: W
pools:
  - id: P1
    lanes:
      - id: L1
`
	res, err := definition.Validate([]byte(src))
	require.NoError(t, err)
	require.Len(t, res.Definition.Pools[0].Lanes, 1)
	assert.Empty(t, res.Definition.Pools[0].Lanes[0].Elements)
	assert.Empty(t, res.Definition.Pools[0].Flows)
}

func TestValidate_UnknownTypeIsWarning(t *testing.T) {
	src := `
name: W
pools:
  - id: P1
    lanes:
      - id: L1
        elements:
          - id: T1
            type: scriptTask
            name: Run script
            implementation: groovy
            retries: "3"
`
	res, err := definition.Validate([]byte(src))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, definition.KindUnknownType, res.Warnings[0].Kind)
	assert.Equal(t, "T1", res.Warnings[0].Ref)

	el := res.Definition.Pools[0].Lanes[0].Elements[0]
	assert.Equal(t, "scriptTask", el.Type)
	assert.Equal(t, "Run script", el.Name)
	assert.Equal(t, map[string]any{"implementation": "groovy", "retries": "3"}, el.Attributes)
}

func TestValidate_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine bool
	}{
		{name: "Malformed", input: "a:\n- b: *,", wantLine: true},
		{name: "Empty", input: ""},
		{name: "Scalar Document", input: "just a string"},
		{name: "Sequence Document", input: "- a\n- b"},
		{name: "Wrong Shape", input: "name: W\npools: 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := definition.Validate([]byte(tt.input))
			var syntaxErr *definition.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.NotEmpty(t, syntaxErr.Message)
			if tt.wantLine {
				assert.Positive(t, syntaxErr.Line)
			}
			assert.Nil(t, definition.ValidationErrors(err))
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	src := []byte(`
pools:
  - id: P1
    lanes:
      - id: L1
        elements:
          - {id: A, type: task}
    flows:
      - {id: F1, source: A, target: X}
      - {id: F2, source: Y, target: A}
`)
	_, first := definition.Validate(src)
	_, second := definition.Validate(src)
	require.Error(t, first)
	assert.Equal(t, first.Error(), second.Error())
}

func TestValidate_GatewayDefaultFlow(t *testing.T) {
	const template = `
name: W
pools:
  - id: P1
    lanes:
      - id: L1
        elements:
          - {id: G1, type: exclusiveGateway, default: %s}
          - {id: A, type: task}
          - {id: B, type: task}
    flows:
      - {id: F1, source: G1, target: A}
      - {id: F2, source: A, target: B}
`
	tests := []struct {
		name     string
		value    string
		wantKind definition.Kind
		wantMsg  string
	}{
		{name: "Valid", value: "F1"},
		{name: "Unknown Flow", value: "F9", wantKind: definition.KindDanglingReference, wantMsg: `"F9" does not match any flow`},
		{name: "Flow From Elsewhere", value: "F2", wantKind: definition.KindDanglingReference, wantMsg: "does not leave the gateway"},
		{name: "Not A Scalar", value: "{id: F1}", wantKind: definition.KindInvalidAttribute, wantMsg: "invalid attributes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := definition.Validate([]byte(fmt.Sprintf(template, tt.value)))
			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}
			issues := definition.ValidationErrors(err)
			require.Len(t, issues, 1)
			assert.Equal(t, tt.wantKind, issues[0].Kind)
			assert.Equal(t, "G1", issues[0].Ref)
			assert.Contains(t, issues[0].Message, tt.wantMsg)
			assert.Equal(t, 8, issues[0].Line)
		})
	}
}
