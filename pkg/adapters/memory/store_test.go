package memory_test

import (
	"testing"

	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunInstanceStoreContract(t, store)
}

func TestMemoryDefinitionStore_Contract(t *testing.T) {
	store := memory.NewDefinitionStore()
	ports.RunDefinitionStoreContract(t, store)
}
