package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/sebdah/goldie/v2"
)

func fill() domain.DefinitionSummary {
	return domain.DefinitionSummary{
		ID:           "fill",
		Name:         "fill",
		States:       []string{"A", "B"},
		TapeAlphabet: []string{"0", "1", "␣"},
		Blank:        "␣",
		InitialState: "A",
		FinalStates:  []string{"B"},
		Transitions: []domain.Transition{
			{State: "A", Read: "0", Next: "A", Write: "1", Move: domain.MoveRight},
			{State: "A", Read: "1", Next: "A", Write: "1", Move: domain.MoveRight},
			{State: "A", Read: "␣", Next: "B", Write: "␣", Move: domain.MoveLeft},
		},
	}
}

func TestGenerateMermaid_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "fill", []byte(graph.GenerateMermaid(fill(), nil)))
	g.Assert(t, "fill_overlay", []byte(graph.GenerateMermaid(fill(), &graph.GraphOverlay{
		VisitedStates: []string{"A", "A", "B"},
		CurrentState:  "B",
	})))
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		def      domain.DefinitionSummary
		contains []string
		absent   []string
	}{
		{
			name: "State Names Are Labels",
			def: domain.DefinitionSummary{
				States:       []string{"q-0", "half done"},
				InitialState: "q-0",
			},
			contains: []string{
				`state "q-0" as s0`,
				`state "half done" as s1`,
				"[*] --> s0",
			},
		},
		{
			name: "Label Escaping",
			def: domain.DefinitionSummary{
				States: []string{`say "hi"`},
				Transitions: []domain.Transition{
					{State: `say "hi"`, Read: ";", Next: `say "hi"`, Write: "x", Move: domain.MoveLeft},
				},
			},
			contains: []string{
				`state "say 'hi'" as s0`,
				"s0 --> s0 : , → x, L",
			},
		},
		{
			name: "No Final States",
			def: domain.DefinitionSummary{
				States:       []string{"a"},
				InitialState: "a",
			},
			absent: []string{"--> [*]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.def, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}
