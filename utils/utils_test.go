package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveFrontmatter(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"none", "# Title\n\nBody", "# Title\n\nBody"},
		{"front matter", "---\ntitle: x\n---\n# Title\n", "# Title\n"},
		{"unterminated", "---\ntitle: x\n# Title\n", "---\ntitle: x\n# Title\n"},
		{"rule later", "# Title\n---\n", "# Title\n---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(RemoveFrontmatter([]byte(tt.in))); got != tt.want {
				t.Errorf("RemoveFrontmatter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("ENVOY_TEST_DIR", "briefings")

	if got, want := ExpandPath("~/$ENVOY_TEST_DIR"), filepath.Join(home, "briefings"); got != want {
		t.Errorf("ExpandPath() = %q, want %q", got, want)
	}
	if got := ExpandPath("/tmp/x"); got != "/tmp/x" {
		t.Errorf("ExpandPath() = %q", got)
	}
}

func TestIsMarkdownFile(t *testing.T) {
	for name, want := range map[string]bool{
		"brief.md":  true,
		"BRIEF.MD":  true,
		"notes.txt": true,
		"-":         true,
		"main.go":   false,
	} {
		if got := IsMarkdownFile(name); got != want {
			t.Errorf("IsMarkdownFile(%q) = %v, want %v", name, got, want)
		}
	}
}
