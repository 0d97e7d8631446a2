package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInterrupted is returned when the user aborts a prompt, either by
// canceling the process or by closing the input stream.
var ErrInterrupted = errors.New("prompt interrupted")

// Prompter is the line-oriented prompt capability injected into workflows.
// Keeping workflows behind this interface makes them testable without
// terminal I/O.
type Prompter interface {
	Ask(ctx context.Context, message string) (string, error)
	Confirm(ctx context.Context, message string) (bool, error)
}

// Shell reads answers line by line from an input stream and renders prompts
// to an output stream.
type Shell struct {
	in  *bufio.Reader
	out io.Writer
}

type lineResult struct {
	line string
	err  error
}

// New creates a shell over the given streams. Nil arguments default to
// stdin/stdout.
func New(in io.Reader, out io.Writer) *Shell {
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	return &Shell{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ask renders the message followed by a "> " marker and returns one line of
// input with surrounding whitespace trimmed. Context cancellation while
// waiting aborts with ErrInterrupted.
func (s *Shell) Ask(ctx context.Context, message string) (string, error) {
	if message == "" {
		fmt.Fprint(s.out, "> ")
	} else {
		fmt.Fprintf(s.out, "%s > ", message)
	}

	results := make(chan lineResult, 1)

	// The read is blocking; on cancellation the goroutine is abandoned and
	// the process exits shortly after.
	go func() {
		line, err := s.in.ReadString('\n')
		results <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case result := <-results:
		if result.err != nil && result.line == "" {
			return "", ErrInterrupted
		}

		return strings.TrimSpace(result.line), nil
	}
}

// Confirm asks a yes/no question. An empty answer and "y" (any case) both
// accept; anything else declines.
func (s *Shell) Confirm(ctx context.Context, message string) (bool, error) {
	answer, err := s.Ask(ctx, message+"\n[Y/n]")
	if err != nil {
		return false, err
	}

	answer = strings.ToLower(answer)

	return answer == "" || answer == "y", nil
}

// Out exposes the output stream so workflows can print alongside prompts.
func (s *Shell) Out() io.Writer {
	return s.out
}
