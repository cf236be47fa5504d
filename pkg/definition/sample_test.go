package definition_test

import (
	"testing"

	"github.com/aretw0/bpmngen/pkg/definition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_IsValid(t *testing.T) {
	res, err := definition.Validate(definition.Sample)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "Order Processing Workflow", res.Definition.Name)
	require.Len(t, res.Definition.Pools, 1)
	assert.Len(t, res.Definition.Pools[0].Lanes[0].Elements, 5)
	assert.Len(t, res.Definition.Pools[0].Flows, 4)
}
