package turing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// SnapshotRenderer turns a snapshot into display text.
// This allows for TUI rendering (highlighted head cell) without coupling the core package.
type SnapshotRenderer func(domain.Snapshot) string

// Runner drives one instance from a line-oriented console.
//
// Commands: an empty line or "step" applies one transition, "run N" runs a
// bounded loop, "reset TAPE" reloads the tape, "history" prints the retained
// records and "quit" leaves. In headless mode the instance is run to halt (or
// MaxSteps) without reading input.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	MaxSteps int
	Renderer SnapshotRenderer
}

// NewRunner creates a Runner with the given IO.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out, MaxSteps: 10_000}
}

// Run executes the console loop until the user quits or input ends.
func (r *Runner) Run(ctx context.Context, svc *Service, instanceID string) error {
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	view, err := svc.Get(ctx, instanceID)
	if err != nil {
		return err
	}
	r.show(view.Snapshot)

	if r.Headless {
		out, err := svc.Run(ctx, instanceID, r.MaxSteps)
		if err != nil {
			return err
		}
		r.show(out.Snapshot)
		return nil
	}

	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	lines := bufio.NewReader(r.Input)

	for {
		fmt.Fprint(r.Output, "> ")
		text, err := lines.ReadString('\n')
		if err == io.EOF && strings.TrimSpace(text) == "" {
			return nil
		}
		if err != nil && err != io.EOF {
			return fmt.Errorf("input error: %w", err)
		}

		text, serr := SanitizeCommand(text)
		if serr != nil {
			fmt.Fprintln(r.Output, serr)
			continue
		}

		cmd, arg, _ := strings.Cut(text, " ")
		switch cmd {
		case "", "s", "step":
			out, err := svc.Step(ctx, instanceID)
			if err != nil {
				return err
			}
			if !out.Applied {
				fmt.Fprintln(r.Output, "halted")
			}
			r.show(out.Snapshot)
		case "r", "run":
			n := r.MaxSteps
			if arg != "" {
				if n, err = strconv.Atoi(strings.TrimSpace(arg)); err != nil {
					fmt.Fprintf(r.Output, "invalid step count %q\n", arg)
					continue
				}
			}
			out, err := svc.Run(ctx, instanceID, n)
			if err != nil {
				if IsInvalidInput(err) {
					fmt.Fprintln(r.Output, err)
					continue
				}
				return err
			}
			fmt.Fprintf(r.Output, "applied %d transitions\n", out.Applied)
			r.show(out.Snapshot)
		case "reset":
			snap, err := svc.Reset(ctx, instanceID, arg)
			if err != nil {
				if IsInvalidInput(err) {
					fmt.Fprintln(r.Output, err)
					continue
				}
				return err
			}
			r.show(snap)
		case "h", "history":
			records, err := svc.History(ctx, instanceID)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Fprintf(r.Output, "%d: %s, %s -> %s, %s, %s\n",
					rec.Index, rec.StateBefore, rec.Read, rec.StateAfter, rec.Written, rec.Move)
			}
		case "q", "quit", "exit":
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		default:
			fmt.Fprintf(r.Output, "unknown command %q (step, run N, reset TAPE, history, quit)\n", cmd)
		}
	}
}

func (r *Runner) show(snap domain.Snapshot) {
	if r.Renderer != nil {
		fmt.Fprint(r.Output, r.Renderer(snap))
		return
	}
	fmt.Fprintf(r.Output, "%s  state=%s steps=%d head=%d halted=%t\n",
		strings.Join(snap.Tape, ""), snap.CurrentState, snap.Steps, snap.HeadPosition, snap.Halted)
}
