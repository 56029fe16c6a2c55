package dsl

import (
	"slices"

	"github.com/aretw0/turing/pkg/schema"
)

// DefaultBlank is the blank symbol used unless Blank is called.
const DefaultBlank = "_"

// Builder manages the definition construction.
type Builder struct {
	spec   schema.DefinitionSpec
	states map[string]*StateBuilder
	extra  []string
}

// New creates a new definition builder.
func New(name string) *Builder {
	return &Builder{
		spec: schema.DefinitionSpec{
			Name:  name,
			Blank: DefaultBlank,
		},
		states: make(map[string]*StateBuilder),
	}
}

// Describe sets the free-form description.
func (b *Builder) Describe(text string) *Builder {
	b.spec.Description = text
	return b
}

// Blank sets the blank symbol.
func (b *Builder) Blank(symbol string) *Builder {
	b.spec.Blank = symbol
	return b
}

// Input declares the input alphabet.
func (b *Builder) Input(symbols ...string) *Builder {
	b.spec.InputAlphabet = append(b.spec.InputAlphabet, symbols...)
	return b
}

// Tape declares tape symbols that no rule reads or writes.
func (b *Builder) Tape(symbols ...string) *Builder {
	b.extra = append(b.extra, symbols...)
	return b
}

// Add creates a new state in the definition.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{id: id, builder: b}
	b.states[id] = sb
	b.spec.States = append(b.spec.States, id)
	return sb
}

// Build assembles the definition and validates it, reporting every violation.
// The definition is returned even when invalid so callers can inspect it.
func (b *Builder) Build() (schema.DefinitionSpec, error) {
	spec := b.spec
	spec.States = slices.Clone(b.spec.States)
	spec.InputAlphabet = slices.Clone(b.spec.InputAlphabet)
	spec.FinalStates = slices.Clone(b.spec.FinalStates)
	spec.Transitions = slices.Clone(b.spec.Transitions)

	if spec.InitialState == "" && len(spec.States) > 0 {
		spec.InitialState = spec.States[0]
	}

	var tape []string
	add := func(symbols ...string) {
		for _, s := range symbols {
			if !slices.Contains(tape, s) {
				tape = append(tape, s)
			}
		}
	}
	add(spec.InputAlphabet...)
	add(b.extra...)
	for _, t := range spec.Transitions {
		add(t.ReadSymbol, t.WriteSymbol)
	}
	add(spec.Blank)
	spec.TapeAlphabet = tape

	return spec, schema.ValidateAll(spec)
}
