package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/turing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "turing version "+strings.TrimSpace(turing.Version)+"\n", out)
}

func TestRunCommand(t *testing.T) {
	machine := filepath.Join(t.TempDir(), "fill.tm")
	require.NoError(t, os.WriteFile(machine, []byte(`states: A, B
input_alphabet: 0, 1
tape_alphabet: 0, 1, _
blank: _
initial_state: A
final_states: B
A, 0 -> A, 1, R
A, _ -> B, _, R
`), 0o644))

	out, err := execute(t, "run", machine, "--tape", "00", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"current_state": "B"`)
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	_, err := execute(t, "validate", "x.tm", "--log-level", "loud")
	assert.Error(t, err)
}

func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"ab", "c"}, splitSymbols("ab, c"))
	assert.Equal(t, []string{}, splitSymbols(" "))
}
