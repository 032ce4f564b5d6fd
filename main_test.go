package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/envoy/internal/history"
	"github.com/spf13/viper"
)

func TestAPIKeyPrecedence(t *testing.T) {
	t.Cleanup(func() { viper.Set("gemini.api_key", nil) })

	tests := []struct {
		name   string
		gemini string
		apiKey string
		config string
		want   string
	}{
		{"gemini env wins", "g", "a", "c", "g"},
		{"api key env", "", "a", "c", "a"},
		{"config file", "", "", "c", "c"},
		{"trimmed", "  g  ", "", "", "g"},
		{"none", "", "", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", tc.gemini)
			t.Setenv("API_KEY", tc.apiKey)
			viper.Set("gemini.api_key", tc.config)
			if got := apiKey(); got != tc.want {
				t.Errorf("apiKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadSourceStripsFrontmatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	content := "---\ntitle: Notes\n---\n# France\n\nBody.\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := readSource(path)
	if err != nil {
		t.Fatalf("readSource: %v", err)
	}
	if got != "# France\n\nBody.\n" {
		t.Errorf("readSource = %q", got)
	}

	if _, err := readSource(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFormatHistoryLine(t *testing.T) {
	item := history.Item{
		ID:        "0123456789abcdef",
		Country:   "Brazil",
		Topic:     "Deforestation in the Amazon basin and carbon markets",
		Timestamp: time.Now().Add(-2 * time.Hour),
	}
	line := formatHistoryLine(item, lipgloss.NewStyle(), 40)
	if !strings.HasPrefix(line, "01234567") {
		t.Errorf("line does not start with the short id: %q", line)
	}
	if strings.Contains(line, "carbon markets") {
		t.Errorf("line was not truncated: %q", line)
	}
	if !strings.Contains(line, "2 hours ago") {
		t.Errorf("line is missing the relative time: %q", line)
	}
}
