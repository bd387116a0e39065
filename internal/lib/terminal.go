package lib

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminalReader reports whether the reader is an interactive terminal.
// Prompts must only be issued when this returns true.
func IsTerminalReader(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RequestLineInput prompts for a single line of input and returns it trimmed.
func RequestLineInput(in io.Reader, out io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprintf(out, "%s: ", prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// RequestConfirmation prompts with "[y/N]" and returns true only for an
// explicit yes. Any other answer, including an empty one, declines.
func RequestConfirmation(in io.Reader, out io.Writer, prompt string) (bool, error) {
	answer, err := RequestLineInput(in, out, fmt.Sprintf("%s [y/N]", prompt))
	if err != nil {
		return false, err
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func RequestSecretInput(in io.Reader, out io.Writer, prompt string) (string, error) {
	_, err := fmt.Fprintf(out, "%s: ", prompt)
	if err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	defer slog.Debug("secret received")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("reading secret input: %w", err)
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return "", fmt.Errorf("writing newline after secret input: %w", err)
		}

		return strings.TrimSpace(string(secret)), nil
	}

	slog.Debug("Not a terminal, falling back to normal input reading")

	// When not a terminal, fall back to normal input reading
	reader := bufio.NewReader(in)
	secret, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading secret input: %w", err)
	}

	return strings.TrimSpace(secret), nil
}
