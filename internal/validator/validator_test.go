package validator

import (
	"testing"

	"github.com/aretw0/turing/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_Clean(t *testing.T) {
	b := dsl.New("Fill").Input("0")
	b.Add("A").On("0").Write("1").Right("A").On("_").Right("B")
	b.Add("B").Final()
	spec, err := b.Build()
	require.NoError(t, err)

	assert.Empty(t, Lint(spec))
}

func TestLint_Findings(t *testing.T) {
	b := dsl.New("Messy").Input("0")
	b.Add("A").On("0").Right("B").On("_").Right("D")
	b.Add("B").Final().On("0").Right("C")
	b.Add("C").On("0").Right("A")
	b.Add("D")
	b.Add("E")
	spec, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "D", "C", "E"}, spec.States)

	assert.Equal(t, []Finding{
		{Kind: KindFinalHasTransitions, State: "B"},
		{Kind: KindDeadEnd, State: "D"},
		{Kind: KindUnreachable, State: "C"},
		{Kind: KindUnreachable, State: "E"},
	}, Lint(spec))
}

func TestFinding_String(t *testing.T) {
	assert.Equal(t, `state "C" is unreachable from the initial state`, Finding{Kind: KindUnreachable, State: "C"}.String())
	assert.Equal(t, `state "D" has no transitions and is not final`, Finding{Kind: KindDeadEnd, State: "D"}.String())
	assert.Equal(t, `final state "B" has transitions that never apply`, Finding{Kind: KindFinalHasTransitions, State: "B"}.String())
}
