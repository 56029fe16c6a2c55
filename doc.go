/*
Package turing is a deterministic Turing machine interpreter designed to be embedded in services, CLIs and agent tooling.

It separates the static machine (Definition) from its live executions (instances), and keeps the core synchronous: every operation either applies transitions and returns, or fails with a typed error.

# Concept

A Definition is validated once and is immutable afterwards. An instance pairs a Definition with a sparse, unbounded tape, a head position and a control state. Instances are addressed by identifier and each one is serialized independently, so many callers can drive many machines at once.

# Key Features

  - Deterministic Execution: replaying the same steps from the same tape yields identical snapshots.
  - Hexagonal Architecture: definition and instance storage, locking and transports are adapters (memory, Redis, HTTP, MCP).
  - Bounded Runs: run loops stop after max_steps and honour context cancellation.
  - Strict Contracts: definitions are rejected with the violated rule named before they can reach the engine.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/turing"
		"github.com/aretw0/turing/pkg/schema"
	)

	func main() {
		ctx := context.Background()
		svc := turing.New()

		def, err := svc.CreateDefinition(ctx, schema.DefinitionSpec{
			Name:          "fill",
			States:        []string{"A", "B"},
			InputAlphabet: []string{"0"},
			TapeAlphabet:  []string{"0", "1", "_"},
			Blank:         "_",
			InitialState:  "A",
			FinalStates:   []string{"B"},
			Transitions: []schema.TransitionSpec{
				{CurrentState: "A", ReadSymbol: "0", NextState: "A", WriteSymbol: "1", Move: "R"},
				{CurrentState: "A", ReadSymbol: "_", NextState: "B", WriteSymbol: "_", Move: "R"},
			},
		})
		if err != nil {
			log.Fatal(err)
		}

		opened, err := svc.Open(ctx, def.ID(), "000")
		if err != nil {
			log.Fatal(err)
		}

		out, err := svc.Run(ctx, opened.InstanceID, 100)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out.Snapshot.CurrentState, out.Snapshot.Steps)
	}

# Errors

Validation failures wrap schema.ErrValidation and carry the violated rule. Unknown identifiers wrap domain.ErrDefinitionNotFound or domain.ErrInstanceNotFound. Tapes with symbols outside the tape alphabet wrap domain.ErrInvalidInput. Stepping a halted instance is a no-op, not an error.
*/
package turing
