package schema_test

import (
	"errors"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryFill() schema.DefinitionSpec {
	return schema.DefinitionSpec{
		Name:          "fill",
		States:        []string{"A", "B"},
		InputAlphabet: []string{"0", "1"},
		TapeAlphabet:  []string{"0", "1", "␣"},
		Blank:         "␣",
		InitialState:  "A",
		FinalStates:   []string{"B"},
		Transitions: []schema.TransitionSpec{
			{CurrentState: "A", ReadSymbol: "0", NextState: "A", WriteSymbol: "1", Move: "R"},
			{CurrentState: "A", ReadSymbol: "␣", NextState: "B", WriteSymbol: "␣", Move: "Right"},
		},
	}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, schema.Validate(binaryFill()))
	assert.NoError(t, schema.ValidateAll(binaryFill()))
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.DefinitionSpec)
		rule   schema.Rule
		field  string
		value  string
	}{
		{
			name:   "No states",
			mutate: func(s *schema.DefinitionSpec) { s.States = nil },
			rule:   schema.RuleStatesRequired,
			field:  "states",
		},
		{
			name:   "No tape alphabet",
			mutate: func(s *schema.DefinitionSpec) { s.TapeAlphabet = nil; s.InputAlphabet = nil },
			rule:   schema.RuleTapeAlphabetRequired,
			field:  "tape_alphabet",
		},
		{
			name:   "Empty state name",
			mutate: func(s *schema.DefinitionSpec) { s.States = append(s.States, "") },
			rule:   schema.RuleEmptySymbol,
			field:  "states[2]",
		},
		{
			name:   "Input not subset of tape",
			mutate: func(s *schema.DefinitionSpec) { s.InputAlphabet = append(s.InputAlphabet, "2") },
			rule:   schema.RuleInputSubset,
			field:  "input_alphabet[2]",
			value:  "2",
		},
		{
			name:   "Blank missing from tape",
			mutate: func(s *schema.DefinitionSpec) { s.Blank = "_" },
			rule:   schema.RuleBlankInTape,
			field:  "blank",
			value:  "_",
		},
		{
			name:   "Blank is an input symbol",
			mutate: func(s *schema.DefinitionSpec) { s.InputAlphabet = append(s.InputAlphabet, "␣") },
			rule:   schema.RuleBlankNotInput,
			field:  "blank",
			value:  "␣",
		},
		{
			name:   "Unknown initial state",
			mutate: func(s *schema.DefinitionSpec) { s.InitialState = "q0" },
			rule:   schema.RuleInitialState,
			field:  "initial_state",
			value:  "q0",
		},
		{
			name:   "Unknown final state",
			mutate: func(s *schema.DefinitionSpec) { s.FinalStates = []string{"halt"} },
			rule:   schema.RuleFinalStates,
			field:  "final_states[0]",
			value:  "halt",
		},
		{
			name:   "Transition from undeclared state",
			mutate: func(s *schema.DefinitionSpec) { s.Transitions[0].CurrentState = "q_invalid" },
			rule:   schema.RuleTransitionField,
			field:  "transitions[0].current_state",
			value:  "q_invalid",
		},
		{
			name:   "Transition writes undeclared symbol",
			mutate: func(s *schema.DefinitionSpec) { s.Transitions[1].WriteSymbol = "3" },
			rule:   schema.RuleTransitionField,
			field:  "transitions[1].write_symbol",
			value:  "3",
		},
		{
			name:   "Free-form move",
			mutate: func(s *schema.DefinitionSpec) { s.Transitions[0].Move = "S" },
			rule:   schema.RuleMove,
			field:  "transitions[0].move",
			value:  "S",
		},
		{
			name: "Non-functional table",
			mutate: func(s *schema.DefinitionSpec) {
				s.Transitions = append(s.Transitions, schema.TransitionSpec{
					CurrentState: "A", ReadSymbol: "0", NextState: "B", WriteSymbol: "0", Move: "L",
				})
			},
			rule:  schema.RuleDeterministic,
			field: "transitions[2]",
			value: "A, 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := binaryFill()
			tt.mutate(&spec)

			err := schema.Validate(spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, schema.ErrValidation))

			var verr *schema.ValidationError
			require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
			assert.Equal(t, tt.rule, verr.Rule)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.value, verr.Value)
		})
	}
}

func TestValidate_IdenticalDuplicateIsRejected(t *testing.T) {
	spec := binaryFill()
	spec.Transitions = append(spec.Transitions, spec.Transitions[0])

	var verr *schema.ValidationError
	require.ErrorAs(t, schema.Validate(spec), &verr)
	assert.Equal(t, schema.RuleDeterministic, verr.Rule)
}

func TestValidate_FirstViolationWins(t *testing.T) {
	spec := binaryFill()
	spec.InitialState = "nope"
	spec.Transitions[0].NextState = "nowhere"
	spec.InputAlphabet = append(spec.InputAlphabet, "x")

	var verr *schema.ValidationError
	require.ErrorAs(t, schema.Validate(spec), &verr)
	assert.Equal(t, schema.RuleInputSubset, verr.Rule)

	all := schema.ValidationErrors(schema.ValidateAll(spec))
	require.Len(t, all, 3)
	assert.ErrorContains(t, all[1], string(schema.RuleInitialState))
	assert.ErrorContains(t, all[2], "transitions[0].next_state")
}

func TestCompile(t *testing.T) {
	spec := binaryFill()
	spec.States = append(spec.States, "A") // duplicates collapse

	def, err := schema.Compile("def-1", spec)
	require.NoError(t, err)

	assert.Equal(t, "def-1", def.ID())
	assert.Equal(t, "fill", def.Name())
	assert.Equal(t, []string{"A", "B"}, def.Summary().States)
	assert.True(t, def.IsFinal("B"))
	assert.False(t, def.IsFinal("A"))

	tr, ok := def.Lookup("A", "0")
	require.True(t, ok)
	assert.Equal(t, domain.Transition{State: "A", Read: "0", Next: "A", Write: "1", Move: domain.MoveRight}, tr)

	_, ok = def.Lookup("B", "0")
	assert.False(t, ok)

	assert.NoError(t, def.CheckTape([]string{"0", "1", "␣"}))
	assert.ErrorIs(t, def.CheckTape([]string{"0", "2"}), domain.ErrInvalidInput)
}

func TestCompile_DefaultName(t *testing.T) {
	spec := binaryFill()
	spec.Name = ""
	def, err := schema.Compile("xyz", spec)
	require.NoError(t, err)
	assert.Equal(t, "xyz", def.Name())
}

func TestCompile_Rejects(t *testing.T) {
	spec := binaryFill()
	spec.Blank = "0"
	def, err := schema.Compile("x", spec)
	assert.Nil(t, def)
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestFromSummary_RoundTrip(t *testing.T) {
	def, err := schema.Compile("rt", binaryFill())
	require.NoError(t, err)

	again, err := schema.Compile("rt", schema.FromSummary(def.Summary()))
	require.NoError(t, err)
	assert.Equal(t, def.Summary(), again.Summary())
}
