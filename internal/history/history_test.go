package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/envoy/internal/briefing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := Open(filepath.Join(t.TempDir(), "data", "history.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	return s
}

func sample(country string) Item {
	return NewItem(briefing.Briefing{
		Request: briefing.Request{Country: country, Topic: "Water security", Detail: briefing.Concise},
		Summary: "### Country's Stance\n" + country + " cares.",
		Sources: []briefing.Source{{Title: "UN", URI: "https://un.org"}},
	})
}

func TestAddIsNewestFirstAndPersists(t *testing.T) {
	s := newStore(t)
	for _, c := range []string{"Chile", "Peru", "Ghana"} {
		if _, err := s.Add(sample(c)); err != nil {
			t.Fatal(err)
		}
	}

	reloaded := Open(s.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	items := reloaded.List()
	if len(items) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(items))
	}
	for i, want := range []string{"Ghana", "Peru", "Chile"} {
		if items[i].Country != want {
			t.Errorf("items[%d].Country = %q, want %q", i, items[i].Country, want)
		}
	}
	if items[0].Sources[0].URI != "https://un.org" || items[0].DetailLevel != briefing.Concise {
		t.Errorf("fields lost: %+v", items[0])
	}
}

func TestGet(t *testing.T) {
	s := newStore(t)
	a, _ := s.Add(Item{ID: "abc-1", Country: "A"})
	_, _ = s.Add(Item{ID: "abd-2", Country: "B"})

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr error
	}{
		{name: "exact", id: a.ID, want: "A"},
		{name: "unique prefix", id: "abd", want: "B"},
		{name: "ambiguous prefix", id: "ab", wantErr: ErrAmbiguous},
		{name: "unknown", id: "zzz", wantErr: ErrNotFound},
		{name: "blank", id: " ", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Get(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Get(%q) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Country != tt.want {
				t.Errorf("Get(%q).Country = %q, want %q", tt.id, got.Country, tt.want)
			}
		})
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := newStore(t)
	first, _ := s.Add(sample("Chile"))
	_, _ = s.Add(sample("Peru"))

	if err := s.Delete(first.ID); err != nil {
		t.Fatal(err)
	}
	if items := s.List(); len(items) != 1 || items[0].Country != "Peru" {
		t.Fatalf("after Delete: %+v", items)
	}
	if err := s.Delete(first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	reloaded := Open(s.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if n := len(reloaded.List()); n != 0 {
		t.Errorf("after Clear: %d items", n)
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Open(path).Load(); err == nil {
		t.Fatal("expected an error for a corrupt file")
	}
}

func TestItemBriefing(t *testing.T) {
	item := sample("Chile")
	b := item.Briefing()
	if b.Country != "Chile" || b.Detail != briefing.Concise || b.Summary != item.Summary {
		t.Errorf("Briefing() = %+v", b)
	}
	if item.ID == "" || item.Timestamp.IsZero() {
		t.Error("NewItem must set id and timestamp")
	}
}

func TestWatch(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := s.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}

	other := Open(s.Path())
	if _, err := other.Add(sample("Kenya")); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-changes:
			if items := s.List(); len(items) == 1 && items[0].Country == "Kenya" {
				cancel()
				for range changes {
				}
				return
			}
		case <-deadline:
			t.Fatal("no change notification")
		}
	}
}
