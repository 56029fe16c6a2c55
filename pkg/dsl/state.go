package dsl

import (
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
)

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	id      string
	builder *Builder
}

// Initial marks the state as the initial state.
// Without it, the first added state is initial.
func (s *StateBuilder) Initial() *StateBuilder {
	s.builder.spec.InitialState = s.id
	return s
}

// Final marks the state as a halting state.
func (s *StateBuilder) Final() *StateBuilder {
	s.builder.spec.FinalStates = append(s.builder.spec.FinalStates, s.id)
	return s
}

// On starts a transition taken when the head reads symbol in this state.
func (s *StateBuilder) On(symbol string) *RuleBuilder {
	return &RuleBuilder{
		state: s,
		rule: schema.TransitionSpec{
			CurrentState: s.id,
			ReadSymbol:   symbol,
			WriteSymbol:  symbol,
		},
	}
}

// RuleBuilder configures one transition. The rule is recorded by Left or Right.
type RuleBuilder struct {
	state *StateBuilder
	rule  schema.TransitionSpec
}

// Write sets the symbol written before the head moves.
func (r *RuleBuilder) Write(symbol string) *RuleBuilder {
	r.rule.WriteSymbol = symbol
	return r
}

// Left moves the head left and enters target.
func (r *RuleBuilder) Left(target string) *StateBuilder {
	return r.commit(domain.MoveLeft, target)
}

// Right moves the head right and enters target.
func (r *RuleBuilder) Right(target string) *StateBuilder {
	return r.commit(domain.MoveRight, target)
}

func (r *RuleBuilder) commit(move domain.Move, target string) *StateBuilder {
	b := r.state.builder
	b.Add(target)
	r.rule.NextState = target
	r.rule.Move = move.String()
	b.spec.Transitions = append(b.spec.Transitions, r.rule)
	return r.state
}
