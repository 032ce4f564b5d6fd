package tts

import (
	"reflect"
	"testing"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty",
			in:   "",
			want: []string{},
		},
		{
			name: "blank lines and rules only",
			in:   "\n   \n---\n\t\n-----\n",
			want: []string{},
		},
		{
			name: "headings stripped",
			in:   "# Brazil\n## Stance\n### Allies\n#### Deep",
			want: []string{"Brazil", "Stance", "Allies", "Deep"},
		},
		{
			name: "heading marker needs a space",
			in:   "#hashtag\n###\n",
			want: []string{"#hashtag", "###"},
		},
		{
			name: "order preserved and whitespace trimmed",
			in:   "  first  \r\n\nsecond\n---\n  ### third\n",
			want: []string{"first", "second", "third"},
		},
		{
			name: "list items kept verbatim",
			in:   "- G77\n* EU",
			want: []string{"- G77", "* EU"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segments(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
