package app

import (
	"bufio"
	"context"
	"io"
)

// maxLineSize bounds one statement read from a stream.
const maxLineSize = 4 * 1024 * 1024

// Executor runs one statement.
type Executor interface {
	Execute(ctx context.Context, statement string) error
}

// Runner feeds statements to an Executor, stopping at the first failure.
type Runner struct {
	exec  Executor
	usage func()
}

// NewRunner creates a runner; usage is called when there is nothing to run.
func NewRunner(exec Executor, usage func()) *Runner {
	return &Runner{exec: exec, usage: usage}
}

// RunSingle executes one statement. An empty statement shows usage instead.
func (r *Runner) RunSingle(ctx context.Context, statement string) error {
	if statement == "" {
		if r.usage != nil {
			r.usage()
		}
		return nil
	}
	return r.exec.Execute(ctx, statement)
}

// RunStream executes every line of in as its own statement, empty lines
// included. The first failing statement ends the run.
func (r *Runner) RunStream(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.exec.Execute(ctx, sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}
