package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetInt reads a single integer. Empty input returns fallback.
func GetInt(reader *bufio.Reader, prompt string, fallback int, w io.Writer) (int, error) {
	line, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return 0, err
	}
	if line == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", line)
	}
	return n, nil
}

// GetFloat reads an optional float. Empty input returns (nil, nil).
func GetFloat(reader *bufio.Reader, prompt string, w io.Writer) (*float64, error) {
	line, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", line)
	}
	return &f, nil
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo. A newline is printed after
// the read to keep the UI tidy.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Confirm prints an irreversible-action warning and requires the user to
// type exactly "yes" to proceed. Anything else declines.
func Confirm(reader *bufio.Reader, warning string, w io.Writer) (bool, error) {
	line, err := GetSimpleText(reader, warning+"\nType 'yes' to continue", w)
	if err != nil {
		return false, err
	}
	return line == "yes", nil
}
