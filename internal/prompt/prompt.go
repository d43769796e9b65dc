// Package prompt reads yes/no answers from the operator.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
)

// LinePrompter writes a question to Out and reads one line from In. Only "y"
// or "Y" approves; empty input, EOF, cancellation and interrupt all decline.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
	// UseTTY reads from /dev/tty when In is the process stdin, so piped stdin
	// does not answer the question.
	UseTTY bool
}

func (p *LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprint(p.Out, question)

	input := p.In
	if p.UseTTY {
		if f, ok := input.(*os.File); ok && f.Fd() == os.Stdin.Fd() {
			if tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0); err == nil {
				defer tty.Close()
				input = tty
			}
		}
	}

	reader := bufio.NewReader(input)
	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			errCh <- err
			return
		}
		lineCh <- line
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.Out)
		return false, nil
	case <-sigCh:
		fmt.Fprintln(p.Out)
		return false, nil
	case err := <-errCh:
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.Out)
			return false, nil
		}
		return false, err
	case line := <-lineCh:
		return IsYes(line), nil
	}
}

// IsYes reports whether an answer is an explicit yes.
func IsYes(answer string) bool {
	switch strings.TrimSpace(answer) {
	case "y", "Y":
		return true
	default:
		return false
	}
}
