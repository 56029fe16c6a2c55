package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractDefinition returns a small valid definition (a unary incrementer)
// for store contract tests.
func ContractDefinition(id string) domain.DefinitionSummary {
	return domain.DefinitionSummary{
		ID:            id,
		Name:          "increment",
		Description:   "appends a 1 to a unary number",
		States:        []string{"scan", "done"},
		InputAlphabet: []string{"1"},
		TapeAlphabet:  []string{"1", "_"},
		Blank:         "_",
		InitialState:  "scan",
		FinalStates:   []string{"done"},
		Transitions: []domain.Transition{
			{State: "scan", Read: "1", Next: "scan", Write: "1", Move: domain.MoveRight},
			{State: "scan", Read: "_", Next: "done", Write: "1", Move: domain.MoveLeft},
		},
	}
}

// RunDefinitionStoreContract runs a suite of tests to verify that a DefinitionStore
// implementation adheres to the defined interface contract.
func RunDefinitionStoreContract(t *testing.T, store DefinitionStore) {
	ctx := context.Background()
	prefix := "contract-def-" + time.Now().Format("20060102150405")

	t.Run("Create and Get", func(t *testing.T) {
		want := ContractDefinition(prefix + "-a")
		require.NoError(t, store.Create(ctx, want))

		got, err := store.Get(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Create Duplicate", func(t *testing.T) {
		def := ContractDefinition(prefix + "-dup")
		require.NoError(t, store.Create(ctx, def))

		def.Name = "other"
		err := store.Create(ctx, def)
		assert.ErrorIs(t, err, domain.ErrDefinitionExists)

		got, err := store.Get(ctx, def.ID)
		require.NoError(t, err)
		assert.Equal(t, "increment", got.Name, "a rejected create must not overwrite")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
	})

	t.Run("List In Creation Order", func(t *testing.T) {
		ids := []string{prefix + "-l3", prefix + "-l1", prefix + "-l2"}
		for _, id := range ids {
			require.NoError(t, store.Create(ctx, ContractDefinition(id)))
		}

		all, err := store.List(ctx)
		require.NoError(t, err)

		var seen []string
		for _, d := range all {
			for _, id := range ids {
				if d.ID == id {
					seen = append(seen, id)
				}
			}
		}
		assert.Equal(t, ids, seen)
	})
}

// RunInstanceStoreContract runs a suite of tests to verify that an InstanceStore
// implementation adheres to the defined interface contract.
func RunInstanceStoreContract(t *testing.T, store InstanceStore) {
	ctx := context.Background()
	prefix := "contract-inst-" + time.Now().Format("20060102150405")
	def := domain.NewDefinition(ContractDefinition("increment"))

	newInstance := func(id string) *domain.Instance {
		inst := domain.NewInstance(id, def, []string{"1", "1"})
		inst.Tape.Write(-2, "1")
		inst.Head = 2
		inst.Steps = 2
		inst.History = []domain.StepRecord{
			{Index: 0, StateBefore: "scan", Read: "1", StateAfter: "scan", Written: "1", Move: domain.MoveRight, Head: 1},
			{Index: 1, StateBefore: "scan", Read: "1", StateAfter: "scan", Written: "1", Move: domain.MoveRight, Head: 2},
		}
		return inst
	}

	t.Run("Save and Load", func(t *testing.T) {
		id := prefix + "-a"
		inst := newInstance(id)
		require.NoError(t, store.Save(ctx, inst))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, loaded.ID)
		assert.Equal(t, "increment", loaded.DefinitionID)
		assert.Equal(t, "scan", loaded.State)
		assert.Equal(t, 2, loaded.Head)
		assert.Equal(t, 2, loaded.Steps)
		assert.False(t, loaded.Halted)
		assert.Equal(t, inst.History, loaded.History)
		require.NotNil(t, loaded.Tape)
		assert.Equal(t, inst.Tape.Cells(), loaded.Tape.Cells())
		assert.Equal(t, "_", loaded.Tape.Blank())
		lo, hi, ok := loaded.Tape.Bounds()
		assert.True(t, ok)
		assert.Equal(t, -2, lo)
		assert.Equal(t, 1, hi)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		id := prefix + "-iso"
		inst := newInstance(id)
		require.NoError(t, store.Save(ctx, inst))

		inst.Tape.Write(0, "_")
		inst.Steps = 99

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Steps)
		assert.Equal(t, "1", loaded.Tape.Read(0))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-del"
		require.NoError(t, store.Save(ctx, newInstance(id)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInstanceNotFound, "Load after Delete should return ErrInstanceNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := prefix + "-1"
		id2 := prefix + "-2"
		require.NoError(t, store.Save(ctx, newInstance(id1)))
		require.NoError(t, store.Save(ctx, newInstance(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
