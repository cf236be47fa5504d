package memory_test

import (
	"testing"

	"github.com/aretw0/bpmngen/pkg/adapters/memory"
	"github.com/aretw0/bpmngen/pkg/ports"
	"github.com/aretw0/bpmngen/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.DiagramStoreContractTest(t, func(t *testing.T) ports.DiagramStore {
		return memory.NewStore()
	})
}
