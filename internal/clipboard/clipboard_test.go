package clipboard

import (
	"errors"
	"os/exec"
	"testing"
)

func TestFindCommand(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		want      string
		wantErr   bool
	}{
		{name: "macOS", goos: "darwin", installed: []string{"pbcopy"}, want: "pbcopy"},
		{name: "wayland preferred", goos: "linux", installed: []string{"xclip", "wl-copy"}, want: "wl-copy"},
		{name: "xsel fallback", goos: "linux", installed: []string{"xsel"}, want: "xsel"},
		{name: "nothing installed", goos: "linux", wantErr: true},
		{name: "unknown OS", goos: "plan9", installed: []string{"pbcopy"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath := func(name string) (string, error) {
				for _, n := range tt.installed {
					if n == name {
						return "/usr/bin/" + name, nil
					}
				}
				return "", exec.ErrNotFound
			}

			got, err := findCommand(tt.goos, lookPath)
			if tt.wantErr {
				if !errors.Is(err, ErrClipboardUnavailable) {
					t.Fatalf("findCommand() error = %v, want ErrClipboardUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("findCommand() error = %v", err)
			}
			if got.name != tt.want {
				t.Errorf("findCommand() = %q, want %q", got.name, tt.want)
			}
		})
	}
}

func TestCopy(t *testing.T) {
	if !IsAvailable() {
		t.Skip("clipboard not available on this system")
	}
	if err := Copy("doe1999"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
}
