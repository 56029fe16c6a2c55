package domain

import (
	"encoding/json"
	"maps"
)

// Tape is a logically bi-infinite tape. Only cells holding a non-blank symbol are
// stored; every other position reads as the blank symbol. The tape tracks the
// minimum and maximum position ever written so it can be enumerated.
type Tape struct {
	blank   string
	cells   map[int]string
	min     int
	max     int
	written bool
}

// NewTape creates an empty tape.
func NewTape(blank string) *Tape {
	return &Tape{
		blank: blank,
		cells: make(map[int]string),
	}
}

// Blank returns the default symbol.
func (t *Tape) Blank() string {
	return t.blank
}

// Read returns the symbol at pos, or the blank symbol if the cell was never set.
func (t *Tape) Read(pos int) string {
	if sym, ok := t.cells[pos]; ok {
		return sym
	}
	return t.blank
}

// Write sets the cell at pos and extends the tracked bounds.
// Writing the blank symbol releases the cell.
func (t *Tape) Write(pos int, sym string) {
	if sym == t.blank {
		delete(t.cells, pos)
	} else {
		t.cells[pos] = sym
	}
	if !t.written {
		t.min, t.max, t.written = pos, pos, true
		return
	}
	t.min = min(t.min, pos)
	t.max = max(t.max, pos)
}

// Load writes symbols to consecutive positions starting at origin.
func (t *Tape) Load(symbols []string, origin int) {
	for i, sym := range symbols {
		t.Write(origin+i, sym)
	}
}

// Bounds returns the minimum and maximum written positions. ok is false for a
// tape that was never written.
func (t *Tape) Bounds() (lo, hi int, ok bool) {
	return t.min, t.max, t.written
}

// Cells is the number of stored (non-blank) cells.
func (t *Tape) Cells() int {
	return len(t.cells)
}

// Window returns the symbols between the written bounds, widened to include the
// head, together with the position of the leftmost returned cell.
func (t *Tape) Window(head int) (left int, symbols []string) {
	lo, hi := head, head
	if t.written {
		lo = min(t.min, head)
		hi = max(t.max, head)
	}
	symbols = make([]string, 0, hi-lo+1)
	for pos := lo; pos <= hi; pos++ {
		symbols = append(symbols, t.Read(pos))
	}
	return lo, symbols
}

// Clone returns an independent copy.
func (t *Tape) Clone() *Tape {
	c := *t
	c.cells = maps.Clone(t.cells)
	if c.cells == nil {
		c.cells = make(map[int]string)
	}
	return &c
}

type tapeJSON struct {
	Blank   string         `json:"blank"`
	Cells   map[int]string `json:"cells"`
	Min     int            `json:"min"`
	Max     int            `json:"max"`
	Written bool           `json:"written"`
}

func (t *Tape) MarshalJSON() ([]byte, error) {
	return json.Marshal(tapeJSON{
		Blank:   t.blank,
		Cells:   t.cells,
		Min:     t.min,
		Max:     t.max,
		Written: t.written,
	})
}

func (t *Tape) UnmarshalJSON(data []byte) error {
	var raw tapeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.blank = raw.Blank
	t.cells = raw.Cells
	if t.cells == nil {
		t.cells = make(map[int]string)
	}
	t.min, t.max, t.written = raw.Min, raw.Max, raw.Written
	return nil
}

// SplitTape splits tape text into symbols, one per Unicode code point.
func SplitTape(text string) []string {
	symbols := make([]string, 0, len(text))
	for _, r := range text {
		symbols = append(symbols, string(r))
	}
	return symbols
}
