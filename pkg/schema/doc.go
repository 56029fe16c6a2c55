// Package schema validates proposed machine definitions.
//
// A DefinitionSpec is the loosely structured input a client submits: symbol sets,
// initial and final states, and an ordered list of transition rules whose move
// direction is still free text. Validate checks it against the rules below, in
// order, and Compile turns a valid spec into an immutable domain.Definition:
//
//	(a) states and tape alphabet are non-empty, and no declared symbol is empty
//	(b) input alphabet ⊆ tape alphabet
//	(c) blank ∈ tape alphabet and blank ∉ input alphabet
//	(d) initial state ∈ states
//	(e) final states ⊆ states
//	(f) every transition field is declared, and every move is Left or Right
//	(g) no two transitions share a (state, read symbol) pair
//
// Failures are *ValidationError values naming the violated rule and the offending
// value; all of them unwrap to ErrValidation.
//
//	def, err := schema.Compile(id, spec)
//	var verr *schema.ValidationError
//	if errors.As(err, &verr) {
//	    log.Printf("rule %s failed on %s=%q", verr.Rule, verr.Field, verr.Value)
//	}
package schema
