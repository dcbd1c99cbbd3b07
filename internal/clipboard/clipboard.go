// Package clipboard copies suggested entry ids to the system clipboard via
// shell commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard command is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// command describes one clipboard writer and its arguments.
type command struct {
	name string
	args []string
}

// candidates lists clipboard writers for goos in order of preference.
func candidates(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{name: "pbcopy"}}
	case "linux", "freebsd", "openbsd":
		return []command{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	case "windows":
		return []command{{name: "clip"}}
	default:
		return nil
	}
}

// findCommand returns the first installed candidate, using lookPath to
// resolve executables.
func findCommand(goos string, lookPath func(string) (string, error)) (*command, error) {
	for _, c := range candidates(goos) {
		if _, err := lookPath(c.name); err == nil {
			return &c, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether a clipboard command exists on this system.
func IsAvailable() bool {
	_, err := findCommand(runtime.GOOS, exec.LookPath)
	return err == nil
}

// Copy writes text to the system clipboard.
func Copy(text string) error {
	c, err := findCommand(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.Command(c.name, c.args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", c.name, err)
	}
	return nil
}
