// Package history keeps previously generated briefings on disk.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("no briefing with that id")
	ErrAmbiguous = errors.New("id prefix matches more than one briefing")
)

// Item is one saved briefing.
type Item struct {
	ID             string               `json:"id"`
	Country        string               `json:"country"`
	Topic          string               `json:"topic"`
	DetailLevel    briefing.DetailLevel `json:"detailLevel"`
	IncludeHistory bool                 `json:"includeHistory"`
	Summary        string               `json:"summary"`
	Sources        []briefing.Source    `json:"sources,omitempty"`
	Timestamp      time.Time            `json:"timestamp"`
}

// NewItem wraps a generated briefing with a fresh id and the current time.
func NewItem(b briefing.Briefing) Item {
	return Item{
		ID:             uuid.NewString(),
		Country:        b.Country,
		Topic:          b.Topic,
		DetailLevel:    b.Detail,
		IncludeHistory: b.IncludeHistory,
		Summary:        b.Summary,
		Sources:        b.Sources,
		Timestamp:      time.Now(),
	}
}

// Briefing converts the item back into a briefing.
func (i Item) Briefing() briefing.Briefing {
	return briefing.Briefing{
		Request: briefing.Request{
			Country:        i.Country,
			Topic:          i.Topic,
			Detail:         i.DetailLevel,
			IncludeHistory: i.IncludeHistory,
		},
		Summary: i.Summary,
		Sources: i.Sources,
	}
}

// Store is a history file holding a JSON array, newest first.
type Store struct {
	path string

	mu    sync.Mutex
	items []Item
}

// Open returns a store backed by path. Call Load to read it.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the file. A missing file is an empty history.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.mu.Lock()
		s.items = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to read history: %w", err)
	}

	var items []Item
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("history file %s is corrupt: %w", s.path, err)
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// List returns the items, newest first.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Add prepends item and saves. An item without an id gets one.
func (s *Store) Add(item Item) (Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := append([]Item{item}, s.items...)
	if err := s.saveLocked(items); err != nil {
		return Item{}, err
	}
	s.items = items
	return item, nil
}

// Get finds an item by id or by a prefix matching exactly one id.
func (s *Store) Get(id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.findLocked(id)
	if err != nil {
		return Item{}, err
	}
	return s.items[i], nil
}

// Delete removes one item.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.findLocked(id)
	if err != nil {
		return err
	}
	items := append(append([]Item(nil), s.items[:i]...), s.items[i+1:]...)
	if err := s.saveLocked(items); err != nil {
		return err
	}
	s.items = items
	return nil
}

// Clear removes every item.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked([]Item{}); err != nil {
		return err
	}
	s.items = nil
	return nil
}

func (s *Store) findLocked(id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, ErrNotFound
	}
	found := -1
	for i, item := range s.items {
		if item.ID == id {
			return i, nil
		}
		if strings.HasPrefix(item.ID, id) {
			if found >= 0 {
				return -1, ErrAmbiguous
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return found, nil
}

func (s *Store) saveLocked(items []Item) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("unable to create history directory: %w", err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("unable to save history: %w", err)
	}
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), s.path)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("unable to save history: %w", err)
	}
	return nil
}

// Watch reloads the store whenever the history file changes on disk and
// sends on the returned channel after each reload. The channel is closed
// when ctx is done. Notifications are coalesced.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory: saves replace the file by rename
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer w.Close() //nolint:errcheck
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) ||
					!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Load(); err != nil {
					log.Warn("Unable to reload history", "err", err)
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Debug("History watcher error", "err", err)
			}
		}
	}()
	return ch, nil
}
