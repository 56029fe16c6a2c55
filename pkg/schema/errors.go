package schema

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every ValidationError.
var ErrValidation = errors.New("definition validation failed")

// Rule names one of the checks a definition must pass.
type Rule string

const (
	RuleStatesRequired       Rule = "states_required"
	RuleTapeAlphabetRequired Rule = "tape_alphabet_required"
	RuleEmptySymbol          Rule = "empty_symbol"
	RuleInputSubset          Rule = "input_alphabet_subset"
	RuleBlankInTape          Rule = "blank_in_tape_alphabet"
	RuleBlankNotInput        Rule = "blank_not_in_input_alphabet"
	RuleInitialState         Rule = "initial_state"
	RuleFinalStates          Rule = "final_states_subset"
	RuleTransitionField      Rule = "transition_field"
	RuleMove                 Rule = "move"
	RuleDeterministic        Rule = "deterministic"
)

// ValidationError represents a single rule violation.
type ValidationError struct {
	Rule   Rule   // Violated rule
	Field  string // Offending field, e.g. "transitions[2].next_state"
	Value  string // The value that failed validation
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q: %s (got %q)", e.Rule, e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
