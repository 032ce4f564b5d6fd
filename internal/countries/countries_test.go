package countries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/all", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Query().Get("fields") != "name" {
			t.Errorf("fields = %q", r.URL.Query().Get("fields"))
		}
		_, _ = w.Write([]byte(`[{"name":{"common":"Peru"}},{"name":{"common":"Chile"}},{"name":{"common":" "}},{"name":{"common":"Côte d'Ivoire"}}]`))
	})
	mux.HandleFunc("/name/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/name/South Korea":
			_, _ = w.Write([]byte(`[{"flags":{"png":"https://flags/kr.png","svg":"https://flags/kr.svg"}}]`))
		case "/name/Chad":
			_, _ = w.Write([]byte(`[{"flags":{"png":"https://flags/td.png"}}]`))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAllUsesCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c := New(filepath.Join(t.TempDir(), "countries.zst"), time.Hour)
	c.BaseURL = srv.URL

	for i := 0; i < 2; i++ {
		names, err := c.All(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"Chile", "Côte d'Ivoire", "Peru"}
		if len(names) != len(want) {
			t.Fatalf("All() = %v, want %v", names, want)
		}
		for j := range want {
			if names[j] != want[j] {
				t.Errorf("All()[%d] = %q, want %q", j, names[j], want[j])
			}
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestAllFallsBackToStaleCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	path := filepath.Join(t.TempDir(), "countries.zst")

	c := New(path, time.Hour)
	c.BaseURL = srv.URL
	if _, err := c.All(context.Background()); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	c.BaseURL = "http://127.0.0.1:1"
	names, err := c.All(context.Background())
	if err != nil {
		t.Fatalf("All() with stale cache: %v", err)
	}
	if len(names) != 3 {
		t.Errorf("All() = %v", names)
	}
}

func TestAllWithoutCacheFails(t *testing.T) {
	c := New("", time.Hour)
	c.BaseURL = "http://127.0.0.1:1"
	if _, err := c.All(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
}

func TestFlag(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c := New("", 0)
	c.BaseURL = srv.URL

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "South Korea", want: "https://flags/kr.svg"},
		{name: "Chad", want: "https://flags/td.png"},
		{name: "Atlantis", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Flag(context.Background(), tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Flag(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Flag(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"Austria", "Australia", "Germany", "Guatemala", "Nigeria", "Niger"}

	tests := []struct {
		name  string
		input string
		limit int
		want  []string
	}{
		{name: "blank", input: "  ", want: nil},
		{name: "prefix keeps order", input: "aus", want: []string{"Austria", "Australia"}},
		{name: "case insensitive", input: "NIG", want: []string{"Nigeria", "Niger"}},
		{name: "limit", input: "aus", limit: 1, want: []string{"Austria"}},
		{name: "fuzzy after prefix", input: "ermny", want: []string{"Germany"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(names, tt.input, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Suggest(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Suggest(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
