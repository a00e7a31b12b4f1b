package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// promptText prints prompt and reads one trimmed line
func (a *App) promptText(prompt string) (string, error) {
	if _, err := fmt.Fprintf(a.out, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// otherwise it reads a plain line (piped input)
func (a *App) promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		line, err := a.promptText(prompt)
		return line, err
	}

	if _, err := fmt.Fprintf(a.out, "%s: ", prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
