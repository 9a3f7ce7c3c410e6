package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"

	apperrors "fitgraph/backend/pkg/errors"
)

// Prompter pauses between stages
type Prompter interface {
	Wait(ctx context.Context, prompt string) error
}

// AutoPrompter never waits
type AutoPrompter struct {
	Out io.Writer
}

// Wait prints the prompt marked as skipped
func (p AutoPrompter) Wait(_ context.Context, prompt string) error {
	fmt.Fprintf(p.Out, "%s [auto]\n", prompt)
	return nil
}

// TerminalPrompter waits for ENTER on its input
type TerminalPrompter struct {
	out   io.Writer
	lines chan error
	in    *bufio.Reader
}

// NewTerminalPrompter reads acknowledgements from in
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{out: out, in: bufio.NewReader(in)}
}

// Wait blocks until a line is read. Context cancellation (Ctrl-C) or the end
// of input count as the user interrupting the demo.
func (p *TerminalPrompter) Wait(ctx context.Context, prompt string) error {
	fmt.Fprint(p.out, prompt)

	// A single reader goroutine is reused across prompts so an abandoned
	// read is not lost.
	if p.lines == nil {
		p.lines = make(chan error)
		go func() {
			for {
				_, err := p.in.ReadString('\n')
				p.lines <- err
				if err != nil {
					close(p.lines)
					return
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out, "\nInterrupted by user.")
		return apperrors.ErrUserCancelled
	case err, ok := <-p.lines:
		if !ok || err != nil {
			fmt.Fprintln(p.out, "\nInterrupted by user.")
			return apperrors.ErrUserCancelled
		}
		return nil
	}
}
