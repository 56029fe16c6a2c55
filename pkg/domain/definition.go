package domain

import "slices"

// DefinitionSummary is the plain, serializable form of a Definition.
// It mirrors the stored definition for client display and for storage adapters.
type DefinitionSummary struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	States        []string     `json:"states"`
	InputAlphabet []string     `json:"input_alphabet"`
	TapeAlphabet  []string     `json:"tape_alphabet"`
	Blank         string       `json:"blank"`
	InitialState  string       `json:"initial_state"`
	FinalStates   []string     `json:"final_states"`
	Transitions   []Transition `json:"transitions"`
}

// DefinitionRef is the listing entry of a definition.
type DefinitionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Definition is an immutable, validated machine description with a hash-indexed
// transition table. Build it through schema.Validate; NewDefinition does not check
// the invariants it relies on.
type Definition struct {
	summary DefinitionSummary

	states map[string]struct{}
	tape   map[string]struct{}
	final  map[string]struct{}
	table  map[Key]Transition
}

// NewDefinition indexes an already validated summary.
func NewDefinition(s DefinitionSummary) *Definition {
	s = s.Clone()
	d := &Definition{
		summary: s,
		states:  toSet(s.States),
		tape:    toSet(s.TapeAlphabet),
		final:   toSet(s.FinalStates),
		table:   make(map[Key]Transition, len(s.Transitions)),
	}
	for _, t := range s.Transitions {
		d.table[t.Key()] = t
	}
	return d
}

func (d *Definition) ID() string           { return d.summary.ID }
func (d *Definition) Name() string         { return d.summary.Name }
func (d *Definition) Blank() string        { return d.summary.Blank }
func (d *Definition) InitialState() string { return d.summary.InitialState }

// Ref returns the listing entry for the definition.
func (d *Definition) Ref() DefinitionRef {
	return DefinitionRef{ID: d.summary.ID, Name: d.summary.Name}
}

// Summary returns a copy of the serializable form.
func (d *Definition) Summary() DefinitionSummary {
	return d.summary.Clone()
}

// HasState reports whether s is a declared state.
func (d *Definition) HasState(s string) bool {
	_, ok := d.states[s]
	return ok
}

// HasSymbol reports whether sym belongs to the tape alphabet.
func (d *Definition) HasSymbol(sym string) bool {
	_, ok := d.tape[sym]
	return ok
}

// IsFinal reports whether s is a final state.
func (d *Definition) IsFinal(s string) bool {
	_, ok := d.final[s]
	return ok
}

// Lookup returns the transition defined for (state, symbol), if any.
func (d *Definition) Lookup(state, symbol string) (Transition, bool) {
	t, ok := d.table[Key{State: state, Symbol: symbol}]
	return t, ok
}

// CheckTape verifies that every symbol belongs to the tape alphabet.
func (d *Definition) CheckTape(symbols []string) error {
	for i, sym := range symbols {
		if !d.HasSymbol(sym) {
			return &InputError{Position: i, Symbol: sym}
		}
	}
	return nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// Clone returns a copy that shares no slices with s.
func (s DefinitionSummary) Clone() DefinitionSummary {
	s.States = slices.Clone(s.States)
	s.InputAlphabet = slices.Clone(s.InputAlphabet)
	s.TapeAlphabet = slices.Clone(s.TapeAlphabet)
	s.FinalStates = slices.Clone(s.FinalStates)
	s.Transitions = slices.Clone(s.Transitions)
	return s
}
