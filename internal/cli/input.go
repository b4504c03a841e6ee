package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompt prints label and reads one trimmed line. A final line without a
// newline is returned as read.
func (a *App) prompt(label string) (string, error) {
	a.printf("%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo and ends the prompt line.
func (a *App) promptPassword() (string, error) {
	a.printf("Password: ")
	pw, err := a.readPassword()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
