// Package validator lints machine definitions that already pass schema validation.
package validator

import (
	"fmt"
	"slices"

	"github.com/aretw0/turing/pkg/schema"
)

// Kind names a lint check.
type Kind string

const (
	// KindUnreachable flags states no run can enter.
	KindUnreachable Kind = "unreachable"
	// KindDeadEnd flags reachable non-final states without any transition.
	KindDeadEnd Kind = "dead_end"
	// KindFinalHasTransitions flags transitions out of final states, which never apply.
	KindFinalHasTransitions Kind = "final_has_transitions"
)

// Finding is a suspicious but legal part of a definition.
type Finding struct {
	Kind  Kind
	State string
}

func (f Finding) String() string {
	switch f.Kind {
	case KindUnreachable:
		return fmt.Sprintf("state %q is unreachable from the initial state", f.State)
	case KindDeadEnd:
		return fmt.Sprintf("state %q has no transitions and is not final", f.State)
	case KindFinalHasTransitions:
		return fmt.Sprintf("final state %q has transitions that never apply", f.State)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.State)
}

// Lint crawls the transition graph from the initial state and reports
// findings in declaration order of the states.
func Lint(spec schema.DefinitionSpec) []Finding {
	final := make(map[string]bool, len(spec.FinalStates))
	for _, s := range spec.FinalStates {
		final[s] = true
	}
	edges := make(map[string][]string)
	for _, t := range spec.Transitions {
		edges[t.CurrentState] = append(edges[t.CurrentState], t.NextState)
	}

	// Crawler. A run halts on entering a final state, so its edges are not followed.
	visited := make(map[string]bool)
	queue := []string{spec.InitialState}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		if final[current] {
			continue
		}
		for _, next := range edges[current] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	var findings []Finding
	for _, s := range dedupe(spec.States) {
		switch {
		case !visited[s]:
			findings = append(findings, Finding{Kind: KindUnreachable, State: s})
		case !final[s] && len(edges[s]) == 0:
			findings = append(findings, Finding{Kind: KindDeadEnd, State: s})
		}
		if final[s] && len(edges[s]) > 0 {
			findings = append(findings, Finding{Kind: KindFinalHasTransitions, State: s})
		}
	}
	return findings
}

func dedupe(items []string) []string {
	var out []string
	for _, s := range items {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
