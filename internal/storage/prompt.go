package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// TerminalPrompter asks overwrite questions on an interactive terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalPrompter prompts on standard input and output.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

func (p *TerminalPrompter) ConfirmOverwrite(path string) (Answer, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}

	for {
		fmt.Fprintf(p.Out, "File already exists: %q\nOverwrite? [y/n/always/never] > ", path)

		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return AnswerNo, fmt.Errorf("reading answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return AnswerYes, nil
		case "n", "no":
			return AnswerNo, nil
		case "always":
			return AnswerAlways, nil
		case "never":
			return AnswerNever, nil
		}
		fmt.Fprintln(p.Out, "Invalid option")
	}
}
