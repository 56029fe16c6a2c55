/*
Package domain contains the core domain models of the Turing machine interpreter.

It defines the immutable machine definition, the sparse bi-infinite tape and the
mutable execution instance that the engine advances one transition at a time. This
package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Definition: A validated, immutable description of a machine (states, alphabets, transition table).
  - Transition: One rule of the transition function, keyed by (state, read symbol).
  - Tape: A sparse position -> symbol map with a blank default and tracked bounds.
  - Instance: A live run of a Definition against a Tape (head, state, step count, halted flag).
  - StepRecord: The audit entry produced by every applied transition.
*/
package domain
