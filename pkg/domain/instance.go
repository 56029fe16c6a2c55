package domain

import "slices"

// StepRecord is the audit entry of one applied transition.
type StepRecord struct {
	// Index is the value of Steps before the transition was applied.
	Index       int    `json:"index"`
	StateBefore string `json:"state_before"`
	Read        string `json:"symbol_read"`
	StateAfter  string `json:"state_after"`
	Written     string `json:"symbol_written"`
	Move        Move   `json:"move"`
	Head        int    `json:"head_position"`
}

// Instance is a live execution of a Definition against a Tape.
// It is mutated only by the engine, under the session manager's lock.
type Instance struct {
	ID           string       `json:"id"`
	DefinitionID string       `json:"definition_id"`
	Definition   *Definition  `json:"-"`
	Tape         *Tape        `json:"tape"`
	Head         int          `json:"head_position"`
	State        string       `json:"current_state"`
	Steps        int          `json:"steps"`
	Halted       bool         `json:"halted"`
	History      []StepRecord `json:"history,omitempty"`
	// Sealed carries the encrypted configuration when a store seals instances
	// at rest. Tape and History are empty in a sealed envelope.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewInstance creates a Ready instance over the given tape symbols.
// The caller must have checked the symbols with Definition.CheckTape.
func NewInstance(id string, def *Definition, symbols []string) *Instance {
	inst := &Instance{
		ID:           id,
		DefinitionID: def.ID(),
		Definition:   def,
	}
	inst.Rewind(symbols)
	return inst
}

// Rewind returns the instance to its initial configuration over a fresh tape.
// Identifier and definition are kept.
func (i *Instance) Rewind(symbols []string) {
	i.Tape = NewTape(i.Definition.Blank())
	i.Tape.Load(symbols, 0)
	i.Head = 0
	i.State = i.Definition.InitialState()
	i.Steps = 0
	i.Halted = false
	i.History = nil
}

// Clone returns a deep copy sharing the read-only Definition.
func (i *Instance) Clone() *Instance {
	c := *i
	if i.Tape != nil {
		c.Tape = i.Tape.Clone()
	}
	c.History = slices.Clone(i.History)
	return &c
}

// Snapshot is the observable state of an instance.
type Snapshot struct {
	CurrentState string   `json:"current_state"`
	Steps        int      `json:"steps"`
	Halted       bool     `json:"halted"`
	TapeLeft     int      `json:"tape_left"`
	Tape         []string `json:"tape"`
	HeadPosition int      `json:"head_position"`
}

// Snapshot captures the observable state.
func (i *Instance) Snapshot() Snapshot {
	left, symbols := i.Tape.Window(i.Head)
	return Snapshot{
		CurrentState: i.State,
		Steps:        i.Steps,
		Halted:       i.Halted,
		TapeLeft:     left,
		Tape:         symbols,
		HeadPosition: i.Head,
	}
}
