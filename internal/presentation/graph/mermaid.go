package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces a Mermaid stateDiagram-v2 for a definition.
// States get positional ids (s0, s1, ...) so any state name is safe; the name is
// the label. Transitions between the same pair of states share one edge whose
// label lists "read → write, move" for each of them. Final states lead to [*].
func GenerateMermaid(def domain.DefinitionSummary, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	sb.WriteString("    direction LR\n")

	ids := make(map[string]string, len(def.States))
	for i, s := range def.States {
		id := fmt.Sprintf("s%d", i)
		ids[s] = id
		sb.WriteString(fmt.Sprintf("    state \"%s\" as %s\n", escape(s), id))
	}

	if id, ok := ids[def.InitialState]; ok {
		sb.WriteString(fmt.Sprintf("    [*] --> %s\n", id))
	}

	type edge struct{ from, to string }
	var order []edge
	labels := make(map[edge][]string)
	for _, t := range def.Transitions {
		e := edge{from: ids[t.State], to: ids[t.Next]}
		if _, seen := labels[e]; !seen {
			order = append(order, e)
		}
		labels[e] = append(labels[e], fmt.Sprintf("%s → %s, %s", escape(t.Read), escape(t.Write), t.Move))
	}
	for _, e := range order {
		sb.WriteString(fmt.Sprintf("    %s --> %s : %s\n", e.from, e.to, strings.Join(labels[e], "<br/>")))
	}

	for _, s := range def.FinalStates {
		if id, ok := ids[s]; ok {
			sb.WriteString(fmt.Sprintf("    %s --> [*]\n", id))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")

		visited := make(map[string]bool)
		for _, s := range overlay.VisitedStates {
			id, ok := ids[s]
			if !ok || visited[id] || s == overlay.CurrentState {
				continue
			}
			visited[id] = true
			sb.WriteString(fmt.Sprintf("    class %s visited\n", id))
		}

		if id, ok := ids[overlay.CurrentState]; ok {
			sb.WriteString(fmt.Sprintf("    class %s current\n", id))
		}
	}

	return sb.String()
}

// escape keeps labels from terminating Mermaid syntax.
func escape(s string) string {
	return strings.NewReplacer("\"", "'", ";", ",", "\n", " ").Replace(s)
}
