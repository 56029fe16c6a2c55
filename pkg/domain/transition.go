package domain

import (
	"fmt"
	"strings"
)

// Move is the head movement of a transition. It is a closed two-value tag.
type Move int8

const (
	MoveLeft  Move = -1
	MoveRight Move = 1
)

// ParseMove accepts "L", "R", "Left" and "Right" (case-insensitive).
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return MoveLeft, nil
	case "r", "right":
		return MoveRight, nil
	}
	return 0, fmt.Errorf("unknown move direction %q", s)
}

// Delta is the change applied to the head position.
func (m Move) Delta() int {
	return int(m)
}

// Valid reports whether m is one of the declared directions.
func (m Move) Valid() bool {
	return m == MoveLeft || m == MoveRight
}

func (m Move) String() string {
	switch m {
	case MoveLeft:
		return "L"
	case MoveRight:
		return "R"
	}
	return fmt.Sprintf("Move(%d)", int8(m))
}

// MarshalText encodes the move as "L" or "R".
func (m Move) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid move %d", int8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes any token accepted by ParseMove.
func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Key identifies the domain of the transition function.
type Key struct {
	State  string
	Symbol string
}

// Transition defines a rule: in State reading Read, write Write, move, and enter Next.
type Transition struct {
	State string `json:"current_state" yaml:"current_state"`
	Read  string `json:"read_symbol" yaml:"read_symbol"`
	Next  string `json:"next_state" yaml:"next_state"`
	Write string `json:"write_symbol" yaml:"write_symbol"`
	Move  Move   `json:"move" yaml:"move"`
}

// Key returns the (state, symbol) pair this transition is defined for.
func (t Transition) Key() Key {
	return Key{State: t.State, Symbol: t.Read}
}

func (t Transition) String() string {
	return fmt.Sprintf("%s, %s -> %s, %s, %s", t.State, t.Read, t.Next, t.Write, t.Move)
}
