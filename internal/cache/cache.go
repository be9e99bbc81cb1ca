// Package cache implements the durable response cache backing ledger queries.
// It is a single key→raw-response map keyed by the fully-constructed request
// URL, persisted as one JSON blob on disk. Invalidation is wholesale: on
// staleness the entire blob is rotated to a timestamped backup name and the
// in-memory map starts over.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/carbonix/carbonix-indexer/internal/adapter"
	"github.com/carbonix/carbonix-indexer/internal/domain"
)

// FetchFunc fetches the raw response body for a request URL
type FetchFunc func(ctx context.Context, url string) (json.RawMessage, error)

// backupTimeLayout is the suffix appended to rotated blob names
const backupTimeLayout = "2006-01-02_15-04-05"

// ResponseCache is a process-wide key-value map of raw query responses. All
// operations hold one mutex so that a write can never interleave with a
// rotation of the backing file.
type ResponseCache struct {
	mu      sync.Mutex
	path    string
	fs      adapter.FileSystem
	entries map[string]json.RawMessage
}

// Open loads the response cache from path, starting empty when the blob does
// not exist yet
func Open(path string, fs adapter.FileSystem) (*ResponseCache, error) {
	c := &ResponseCache{
		path:    path,
		fs:      fs,
		entries: make(map[string]json.RawMessage),
	}
	if !fs.Exists(path) {
		return c, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache blob: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache blob %s: %w", path, err)
	}
	return c, nil
}

// Get returns the cached response for a request URL
func (c *ResponseCache) Get(url string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[url]
	return raw, ok
}

// Put stores a response and persists the whole blob. An already-present key is
// left untouched so that a cached snapshot never mutates under a reader.
func (c *ResponseCache) Put(url string, raw json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; ok {
		return nil
	}
	c.entries[url] = raw
	return c.persist()
}

// Through wraps a fetch function with cache lookup and write-through
func (c *ResponseCache) Through(next FetchFunc) FetchFunc {
	return func(ctx context.Context, url string) (json.RawMessage, error) {
		if raw, ok := c.Get(url); ok {
			return raw, nil
		}
		raw, err := next(ctx, url)
		if err != nil {
			return nil, err
		}
		if err := c.Put(url, raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
}

// Len returns the number of cached responses
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Rotate renames the on-disk blob to a timestamped backup and clears the
// in-memory map. A rename failure is a StaleCacheError: proceeding would mix
// responses from different cache generations, so the caller must abort its
// refresh cycle.
func (c *ResponseCache) Rotate(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fs.Exists(c.path) {
		backup := c.backupPath(now)
		if err := c.fs.Rename(c.path, backup); err != nil {
			return &domain.StaleCacheError{Path: c.path, Err: err}
		}
	}
	c.entries = make(map[string]json.RawMessage)
	return nil
}

// backupPath derives the timestamped backup name, e.g.
// responses.json -> responses_2022-05-06_14-58-54.json
func (c *ResponseCache) backupPath(now time.Time) string {
	dir := filepath.Dir(c.path)
	base := filepath.Base(c.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, now.Format(backupTimeLayout), ext))
}

// persist writes the whole blob; the caller holds the mutex
func (c *ResponseCache) persist() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache blob: %w", err)
	}
	if err := c.fs.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache blob: %w", err)
	}
	return nil
}
