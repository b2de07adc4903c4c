package build

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	// Runner starts external tools.
	Runner interface {
		// Probe checks the tool can be started. The process is killed right away.
		Probe(ctx context.Context, tool string) error
		// Run runs the tool to completion.
		Run(ctx context.Context, tool string, args ...string) error
	}

	// ExecRunner runs tools as child processes.
	ExecRunner struct{}
)

func (ExecRunner) Probe(ctx context.Context, tool string) (err error) {
	cmd := exec.CommandContext(ctx, tool)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	err = cmd.Start()
	if err != nil {
		return err
	}

	_ = cmd.Process.Kill()
	_ = cmd.Wait()

	return nil
}

func (ExecRunner) Run(ctx context.Context, tool string, args ...string) (err error) {
	tr := tlog.SpanFromContext(ctx)

	var out bytes.Buffer

	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	tr.Printw("run tool", "tool", tool, "args", args)

	err = cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "%v", tool)
		}

		return errors.Wrap(err, "%v: %s", tool, bytes.TrimSpace(out.Bytes()))
	}

	if out.Len() != 0 {
		tr.Printw("tool output", "tool", tool, "output", out.String())
	}

	return nil
}
