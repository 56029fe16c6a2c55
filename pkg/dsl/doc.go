/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing machine definitions.

It allows developers to define Turing machines using a type-safe, fluent builder pattern
instead of relying on external YAML or text files. This is particularly useful for generated
machines, unit testing, and leveraging IDE autocompletion/type-checking.

Tape symbols are collected from the rules, so only the input alphabet needs to be declared.
A rule that does not call Write writes back the symbol it read.

Example usage:

	b := dsl.New("Binary Increment").Input("0", "1")

	b.Add("right").Initial().
		On("0").Right("right").
		On("1").Right("right").
		On("_").Left("carry")

	b.Add("carry").
		On("1").Write("0").Left("carry").
		On("0").Write("1").Left("done").
		On("_").Write("1").Left("done")

	b.Add("done").Final()

	spec, err := b.Build()
	// ... pass spec to Service.CreateDefinition
*/
package dsl
