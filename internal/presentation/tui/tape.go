package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Profile returns the colour profile for out: plain ASCII unless out is a terminal.
func Profile(out io.Writer) termenv.Profile {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.NewOutput(f).EnvColorProfile()
	}
	return termenv.Ascii
}

// RenderTape draws the snapshot's tape window as a row of cells with a caret
// under the head, followed by a status line.
//
//	| 1 | 1 | ␣ |
//	        ^
//	state=B steps=4 head=2 halted
func RenderTape(p termenv.Profile, snap domain.Snapshot) string {
	var cells, caret strings.Builder
	cells.WriteString("|")
	caret.WriteString(" ")
	for i, sym := range snap.Tape {
		pos := snap.TapeLeft + i
		w := runewidth.StringWidth(sym)
		cell := " " + sym + " "
		if pos == snap.HeadPosition {
			cells.WriteString(p.String(cell).Reverse().Bold().String())
			caret.WriteString(strings.Repeat(" ", 1+w/2) + "^" + strings.Repeat(" ", w-w/2))
		} else {
			cells.WriteString(cell)
			caret.WriteString(strings.Repeat(" ", w+2))
		}
		cells.WriteString("|")
		caret.WriteString(" ")
	}

	status := fmt.Sprintf("state=%s steps=%d head=%d", snap.CurrentState, snap.Steps, snap.HeadPosition)
	if snap.Halted {
		status += " " + p.String("halted").Foreground(p.Color("#fb7185")).String()
	}
	return cells.String() + "\n" + strings.TrimRight(caret.String(), " ") + "\n" + status + "\n"
}

// RenderStep formats one history record.
func RenderStep(rec domain.StepRecord) string {
	return fmt.Sprintf("%6d  %s, %s -> %s, %s, %s  head=%d",
		rec.Index, rec.StateBefore, rec.Read, rec.StateAfter, rec.Written, rec.Move, rec.Head)
}

// RenderDefinition renders a markdown summary of a definition.
func RenderDefinition(def domain.DefinitionSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", def.Description)
	}
	fmt.Fprintf(&sb, "- **States:** %s\n", strings.Join(quote(def.States), ", "))
	fmt.Fprintf(&sb, "- **Input alphabet:** %s\n", strings.Join(quote(def.InputAlphabet), ", "))
	fmt.Fprintf(&sb, "- **Tape alphabet:** %s\n", strings.Join(quote(def.TapeAlphabet), ", "))
	fmt.Fprintf(&sb, "- **Blank:** `%s`\n", def.Blank)
	fmt.Fprintf(&sb, "- **Initial state:** `%s`\n", def.InitialState)
	fmt.Fprintf(&sb, "- **Final states:** %s\n\n", strings.Join(quote(def.FinalStates), ", "))

	sb.WriteString("| State | Read | Next | Write | Move |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, t := range def.Transitions {
		fmt.Fprintf(&sb, "| `%s` | `%s` | `%s` | `%s` | %s |\n", t.State, t.Read, t.Next, t.Write, t.Move)
	}
	return sb.String()
}

func quote(items []string) []string {
	if len(items) == 0 {
		return []string{"(none)"}
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "`" + s + "`"
	}
	return out
}
