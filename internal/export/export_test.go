package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/envoy/internal/briefing"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		country, topic, want string
	}{
		{"France", "Climate", "MUN_Briefing_france_climate.pdf"},
		{"United States", "Nuclear Non-Proliferation", "MUN_Briefing_united_states_nuclear_non_proliferation.pdf"},
		{"Côte d'Ivoire", "Água", "MUN_Briefing_cote_d_ivoire_agua.pdf"},
		{"Chad", "The question of refugees in the Sahel region", "MUN_Briefing_chad_the_question_of_refugees_in_th.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			if got := Filename(tt.country, tt.topic); got != tt.want {
				t.Errorf("Filename(%q, %q) = %q, want %q", tt.country, tt.topic, got, tt.want)
			}
		})
	}
}

func TestParseBlocks(t *testing.T) {
	src := "### Country's Stance\n" +
		"France **strongly** supports the\n*Paris Agreement*.\n\n" +
		"- First `point`\n" +
		"- Second [link](https://example.com)\n\n" +
		"2. Two\n3. Three\n\n" +
		"---\n"

	got := parseBlocks(src)
	want := []block{
		{kind: blockHeading, level: 3, text: "Country's Stance"},
		{kind: blockParagraph, text: "France strongly supports the Paris Agreement."},
		{kind: blockListItem, level: 1, marker: "-", text: "First point"},
		{kind: blockListItem, level: 1, marker: "-", text: "Second link"},
		{kind: blockListItem, level: 1, marker: "2.", text: "Two"},
		{kind: blockListItem, level: 1, marker: "3.", text: "Three"},
		{kind: blockRule},
	}
	if len(got) != len(want) {
		t.Fatalf("parseBlocks() = %+v, want %d blocks", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPDF(t *testing.T) {
	b := briefing.Briefing{
		Request: briefing.Request{Country: "Côte d'Ivoire", Topic: "Cocoa trade"},
		Summary: "### Country's Stance\n" + strings.Repeat("A long paragraph about trade policy. ", 400),
		Sources: []briefing.Source{{Title: "WTO", URI: "https://wto.org"}},
	}
	doc := FromBriefing(b, "https://flagcdn.com/ci.svg", time.Now())

	var buf bytes.Buffer
	if err := PDF(&buf, doc); err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if n := build(doc).PageCount(); n < 2 {
		t.Errorf("PageCount() = %d, expected the long summary to span several pages", n)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", Filename("Peru", "Mining"))
	doc := Document{Country: "Peru", Topic: "Mining", Summary: "Short."}
	if err := WriteFile(path, doc); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty PDF")
	}
}
