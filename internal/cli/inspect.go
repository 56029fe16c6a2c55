package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/internal/validator"
	"github.com/aretw0/turing/pkg/schema"
)

// Validate checks each machine file and reports every violated rule.
// Valid files are also linted; findings are printed but do not fail the file.
// It returns an error if any file fails.
func Validate(paths []string, out io.Writer) error {
	failed := 0
	for _, path := range paths {
		spec, err := compiler.ParseFile(path)
		if err == nil {
			err = schema.ValidateAll(spec)
		}
		if err == nil {
			fmt.Fprintf(out, "✅ %s\n", path)
			for _, f := range validator.Lint(spec) {
				fmt.Fprintf(out, "   ⚠️  %s\n", f)
			}
			continue
		}

		failed++
		fmt.Fprintf(out, "❌ %s\n", path)
		if errs := schema.ValidationErrors(err); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(out, "   - %v\n", e)
			}
		} else {
			fmt.Fprintf(out, "   - %v\n", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d machine files are invalid", failed, len(paths))
	}
	return nil
}

// Graph prints the Mermaid state diagram of a machine file.
func Graph(ctx context.Context, path string, out io.Writer) error {
	svc, id, err := loadMachine(ctx, path, nil, false)
	if err != nil {
		return err
	}
	def, err := svc.Definition(ctx, id)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(def.Summary(), nil))
	return err
}

// Describe prints a markdown summary of a machine file, passed through render
// when it is not nil.
func Describe(ctx context.Context, path string, out io.Writer, render func(string) (string, error)) error {
	svc, id, err := loadMachine(ctx, path, nil, false)
	if err != nil {
		return err
	}
	def, err := svc.Definition(ctx, id)
	if err != nil {
		return err
	}

	md := tui.RenderDefinition(def.Summary())
	if render != nil {
		rendered, err := render(md)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		md = rendered
	}
	_, err = io.WriteString(out, md)
	return err
}
