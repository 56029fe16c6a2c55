package schema

import (
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
)

// Validate returns the first rule violation of spec, or nil.
func Validate(spec DefinitionSpec) error {
	if errs := check(spec); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateAll reports every violation at once, as an *AggregateError.
func ValidateAll(spec DefinitionSpec) error {
	errs := check(spec)
	if len(errs) == 0 {
		return nil
	}
	all := make([]error, len(errs))
	for i, e := range errs {
		all[i] = e
	}
	return &AggregateError{Errors: all}
}

// Compile validates spec and builds the immutable definition under id.
// An empty name defaults to the id.
func Compile(id string, spec DefinitionSpec) (*domain.Definition, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	transitions := make([]domain.Transition, len(spec.Transitions))
	for i, t := range spec.Transitions {
		move, _ := domain.ParseMove(t.Move) // checked by rule (f)
		transitions[i] = domain.Transition{
			State: t.CurrentState,
			Read:  t.ReadSymbol,
			Next:  t.NextState,
			Write: t.WriteSymbol,
			Move:  move,
		}
	}

	name := spec.Name
	if name == "" {
		name = id
	}

	return domain.NewDefinition(domain.DefinitionSummary{
		ID:            id,
		Name:          name,
		Description:   spec.Description,
		States:        dedupe(spec.States),
		InputAlphabet: dedupe(spec.InputAlphabet),
		TapeAlphabet:  dedupe(spec.TapeAlphabet),
		Blank:         spec.Blank,
		InitialState:  spec.InitialState,
		FinalStates:   dedupe(spec.FinalStates),
		Transitions:   transitions,
	}), nil
}

// FromSummary converts a stored definition back into a spec, so it can be
// recompiled after a round trip through a storage adapter.
func FromSummary(s domain.DefinitionSummary) DefinitionSpec {
	spec := DefinitionSpec{
		Name:          s.Name,
		Description:   s.Description,
		States:        s.States,
		InputAlphabet: s.InputAlphabet,
		TapeAlphabet:  s.TapeAlphabet,
		Blank:         s.Blank,
		InitialState:  s.InitialState,
		FinalStates:   s.FinalStates,
		Transitions:   make([]TransitionSpec, len(s.Transitions)),
	}
	for i, t := range s.Transitions {
		spec.Transitions[i] = TransitionSpec{
			CurrentState: t.State,
			ReadSymbol:   t.Read,
			NextState:    t.Next,
			WriteSymbol:  t.Write,
			Move:         t.Move.String(),
		}
	}
	return spec
}

// check runs the rules in their documented order.
func check(spec DefinitionSpec) []*ValidationError {
	var errs []*ValidationError
	fail := func(rule Rule, field, value, reason string) {
		errs = append(errs, &ValidationError{Rule: rule, Field: field, Value: value, Reason: reason})
	}

	// (a)
	if len(spec.States) == 0 {
		fail(RuleStatesRequired, "states", "", "at least one state is required")
	}
	if len(spec.TapeAlphabet) == 0 {
		fail(RuleTapeAlphabetRequired, "tape_alphabet", "", "at least one tape symbol is required")
	}
	declared := []struct {
		field string
		set   []string
	}{
		{"states", spec.States},
		{"input_alphabet", spec.InputAlphabet},
		{"tape_alphabet", spec.TapeAlphabet},
		{"final_states", spec.FinalStates},
	}
	for _, d := range declared {
		for i, s := range d.set {
			if s == "" {
				fail(RuleEmptySymbol, fmt.Sprintf("%s[%d]", d.field, i), s, "symbols must not be empty")
			}
		}
	}

	states := toSet(spec.States)
	tape := toSet(spec.TapeAlphabet)
	input := toSet(spec.InputAlphabet)

	// (b)
	for i, s := range spec.InputAlphabet {
		if _, ok := tape[s]; !ok && s != "" {
			fail(RuleInputSubset, fmt.Sprintf("input_alphabet[%d]", i), s, "input symbol is not in the tape alphabet")
		}
	}

	// (c)
	if _, ok := tape[spec.Blank]; !ok {
		fail(RuleBlankInTape, "blank", spec.Blank, "blank symbol is not in the tape alphabet")
	}
	if _, ok := input[spec.Blank]; ok {
		fail(RuleBlankNotInput, "blank", spec.Blank, "blank symbol must not be an input symbol")
	}

	// (d)
	if _, ok := states[spec.InitialState]; !ok {
		fail(RuleInitialState, "initial_state", spec.InitialState, "initial state is not a declared state")
	}

	// (e)
	for i, s := range spec.FinalStates {
		if _, ok := states[s]; !ok && s != "" {
			fail(RuleFinalStates, fmt.Sprintf("final_states[%d]", i), s, "final state is not a declared state")
		}
	}

	// (f)
	for i, t := range spec.Transitions {
		prefix := fmt.Sprintf("transitions[%d]", i)
		if _, ok := states[t.CurrentState]; !ok {
			fail(RuleTransitionField, prefix+".current_state", t.CurrentState, "state is not declared")
		}
		if _, ok := tape[t.ReadSymbol]; !ok {
			fail(RuleTransitionField, prefix+".read_symbol", t.ReadSymbol, "symbol is not in the tape alphabet")
		}
		if _, ok := states[t.NextState]; !ok {
			fail(RuleTransitionField, prefix+".next_state", t.NextState, "state is not declared")
		}
		if _, ok := tape[t.WriteSymbol]; !ok {
			fail(RuleTransitionField, prefix+".write_symbol", t.WriteSymbol, "symbol is not in the tape alphabet")
		}
		if _, err := domain.ParseMove(t.Move); err != nil {
			fail(RuleMove, prefix+".move", t.Move, "move must be Left (L) or Right (R)")
		}
	}

	// (g)
	seen := make(map[domain.Key]int, len(spec.Transitions))
	for i, t := range spec.Transitions {
		key := domain.Key{State: t.CurrentState, Symbol: t.ReadSymbol}
		if first, dup := seen[key]; dup {
			fail(RuleDeterministic, fmt.Sprintf("transitions[%d]", i), t.CurrentState+", "+t.ReadSymbol,
				fmt.Sprintf("duplicates the (state, symbol) pair of transitions[%d]", first))
			continue
		}
		seen[key] = i
	}

	return errs
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
