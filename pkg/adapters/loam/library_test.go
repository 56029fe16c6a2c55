package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/turing/internal/testutils"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const incrementMD = `---
states: [scan, done]
input_alphabet: [1]
tape_alphabet: [1, _]
blank: _
initial_state: scan
final_states: [done]
transitions:
  - "scan, 1 -> scan, 1, R"
  - [scan, _, done, 1, L]
---
Appends a 1 to a unary number.`

const flipYAML = `name: Flip
states: [go]
input_alphabet: [a, b]
tape_alphabet: [a, b, _]
blank: _
initial_state: go
final_states: []
transitions:
  - {current_state: go, read_symbol: a, next_state: go, write_symbol: b, move: R}
  - {current_state: go, read_symbol: b, next_state: go, write_symbol: a, move: R}
`

const eraseJSON = `{
  "id": "eraser",
  "name": "Eraser",
  "states": ["e"],
  "input_alphabet": ["x"],
  "tape_alphabet": ["x", "_"],
  "blank": "_",
  "initial_state": "e",
  "final_states": [],
  "transitions": [["e", "x", "e", "_", "R"]]
}`

func TestLibrary_Load(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t, loam.WithVersioning(false))
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"unary_increment.md": incrementMD,
		"flip.yaml":          flipYAML,
		"erase.json":         eraseJSON,
	})

	lib := New(loam.NewTypedRepository[MachineMetadata](repo))
	entries, err := lib.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{"eraser", "flip", "unary_increment"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})

	inc := entries[2].Spec
	assert.Equal(t, "Unary Increment", inc.Name)
	assert.Equal(t, "Appends a 1 to a unary number.", inc.Description)
	assert.Equal(t, []string{"1", "_"}, inc.TapeAlphabet)
	assert.Equal(t, schema.TransitionSpec{CurrentState: "scan", ReadSymbol: "_", NextState: "done", WriteSymbol: "1", Move: "L"}, inc.Transitions[1])

	for _, e := range entries {
		assert.NoError(t, schema.Validate(e.Spec), e.ID)
	}
}

func TestLibrary_Collision(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t, loam.WithVersioning(false))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "flip.yaml"), []byte(flipYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "flip.json"), []byte(`{"name": "Other", "states": ["s"]}`), 0644))

	lib := New(loam.NewTypedRepository[MachineMetadata](repo))
	_, err := lib.Load(context.Background())
	assert.ErrorContains(t, err, "collision")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Binary Increment", DisplayName("binary_increment"))
	assert.Equal(t, "Busy Beaver 3", DisplayName("nested/busy-beaver-3"))
}
