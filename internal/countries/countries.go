// Package countries looks up country names and flags from the REST Countries
// API for autocomplete.
package countries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

// DefaultBaseURL is the public REST Countries endpoint.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// ErrNoFlag is returned by Flag when the API has no flag for the name.
var ErrNoFlag = errors.New("no flag found")

// Client fetches country data. Names are cached on disk for TTL.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	CachePath string
	TTL       time.Duration
}

// New returns a client with a 10 second timeout caching names at cachePath.
func New(cachePath string, ttl time.Duration) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		CachePath: cachePath,
		TTL:       ttl,
	}
}

type nameResponse struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

type flagResponse struct {
	Flags struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
}

// All returns the common name of every country, sorted. A fresh cache file
// is used instead of the network; a stale one is the fallback when the
// request fails.
func (c *Client) All(ctx context.Context) ([]string, error) {
	cached, fresh := c.readCache()
	if fresh {
		return cached, nil
	}

	var resp []nameResponse
	if err := c.get(ctx, "/all?fields=name", &resp); err != nil {
		if len(cached) > 0 {
			log.Warn("Using stale country list", "err", err)
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}

	names := make([]string, 0, len(resp))
	for _, r := range resp {
		if n := strings.TrimSpace(r.Name.Common); n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	c.writeCache(names)
	return names, nil
}

// Flag returns the flag image URL for a country, preferring SVG.
func (c *Client) Flag(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNoFlag
	}

	var resp []flagResponse
	if err := c.get(ctx, "/name/"+url.PathEscape(name)+"?fields=flags", &resp); err != nil {
		return "", fmt.Errorf("failed to fetch flag for %s: %w", name, err)
	}
	for _, r := range resp {
		if r.Flags.SVG != "" {
			return r.Flags.SVG, nil
		}
		if r.Flags.PNG != "" {
			return r.Flags.PNG, nil
		}
	}
	return "", ErrNoFlag
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// readCache returns the cached names and whether they are younger than TTL.
func (c *Client) readCache() ([]string, bool) {
	if c.CachePath == "" {
		return nil, false
	}
	f, err := os.Open(c.CachePath)
	if err != nil {
		return nil, false
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return nil, false
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer dec.Close()

	var names []string
	if err := json.NewDecoder(dec).Decode(&names); err != nil {
		log.Debug("Ignoring unreadable country cache", "err", err)
		return nil, false
	}
	return names, c.TTL > 0 && time.Since(info.ModTime()) < c.TTL
}

func (c *Client) writeCache(names []string) {
	if c.CachePath == "" {
		return
	}
	if err := writeCompressed(c.CachePath, names); err != nil {
		log.Warn("Unable to cache country list", "err", err)
	}
}

func writeCompressed(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f)
	if err == nil {
		err = json.NewEncoder(enc).Encode(v)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
