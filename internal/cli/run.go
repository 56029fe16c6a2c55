package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Path        string
	Tape        string
	Symbols     []string // Overrides Tape when set
	MaxSteps    int
	Trace       bool
	JSON        bool
	Interactive bool
	Input       io.Reader
	Output      io.Writer
	Profile     termenv.Profile
	Logger      *slog.Logger
}

// RunResult is the JSON document printed by run --json.
type RunResult struct {
	DefinitionID string              `json:"definition_id"`
	State        domain.Snapshot     `json:"state"`
	Applied      int                 `json:"applied"`
	History      []domain.StepRecord `json:"history,omitempty"`
}

// Run loads a machine file, opens an instance and runs it.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Interactive && opts.JSON {
		return fmt.Errorf("--interactive and --json cannot be used together")
	}

	svc, id, err := loadMachine(ctx, opts.Path, opts.Logger, opts.Trace || opts.JSON || opts.Interactive)
	if err != nil {
		return err
	}

	symbols := opts.Symbols
	if symbols == nil {
		symbols = domain.SplitTape(opts.Tape)
	}
	opened, err := svc.OpenSymbols(ctx, id, symbols)
	if err != nil {
		return err
	}

	if opts.Interactive {
		tui.PrintBanner(opts.Output)
		runner := turing.NewRunner(opts.Input, opts.Output)
		runner.MaxSteps = opts.MaxSteps
		runner.Renderer = func(s domain.Snapshot) string { return tui.RenderTape(opts.Profile, s) }
		return runner.Run(ctx, svc, opened.InstanceID)
	}

	out, err := svc.Run(ctx, opened.InstanceID, opts.MaxSteps)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(opts.Output)
		enc.SetIndent("", "  ")
		return enc.Encode(RunResult{DefinitionID: id, State: out.Snapshot, Applied: out.Applied, History: out.Records})
	}

	if opts.Trace {
		for _, rec := range out.Records {
			fmt.Fprintln(opts.Output, tui.RenderStep(rec))
		}
	}
	fmt.Fprint(opts.Output, tui.RenderTape(opts.Profile, out.Snapshot))
	if !out.Snapshot.Halted {
		fmt.Fprintf(opts.Output, "stopped after %d steps without halting\n", out.Applied)
	}
	return nil
}

// loadMachine parses a definition file into a fresh in-memory service.
func loadMachine(ctx context.Context, path string, logger *slog.Logger, history bool) (*turing.Service, string, error) {
	spec, err := compiler.ParseFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	svcOpts := []turing.Option{turing.WithHistory(history, 0)}
	if logger != nil {
		svcOpts = append(svcOpts, turing.WithLogger(logger))
	}
	svc := turing.New(svcOpts...)

	id := machineID(path)
	if _, err := svc.PutDefinition(ctx, id, spec); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return svc, id, nil
}

func machineID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
