// Package catalog is the static table of canonical gateway errors.
//
// A Catalog is built once at startup and never mutated, so a single instance
// is shared by every request. Lookups of unknown keys are configuration
// defects and are reported with ErrUnknownErrorKey.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrUnknownErrorKey = errors.New("unknown error key")
	ErrInvalidEntry    = errors.New("invalid catalog entry")
)

// Entry is one canonical error definition.
type Entry struct {
	Key         string `yaml:"key"`
	Status      int    `yaml:"status"`
	ID          string `yaml:"id"`
	Profile     string `yaml:"profile"`
	Severity    string `yaml:"severity"`
	Code        string `yaml:"code"`
	System      string `yaml:"system"`
	SystemCode  string `yaml:"systemCode"`
	Diagnostics string `yaml:"diagnostics"`
}

// Validate checks the entry is usable as an error response.
func (e Entry) Validate() error {
	if e.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidEntry)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("%w: %s: id %q is not a UUID", ErrInvalidEntry, e.Key, e.ID)
	}
	if e.Status < 400 || e.Status > 599 {
		return fmt.Errorf("%w: %s: status %d is not an error status", ErrInvalidEntry, e.Key, e.Status)
	}
	if e.Code == "" || e.SystemCode == "" {
		return fmt.Errorf("%w: %s: code and systemCode are required", ErrInvalidEntry, e.Key)
	}
	return nil
}

// Catalog is an immutable key -> Entry mapping
type Catalog struct {
	entries map[string]Entry
	keys    []string
}

// New builds a catalog from entries. Later entries override earlier ones with
// the same key, which is how extension files replace built-in entries.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		e = e.withDefaults()
		if err := e.Validate(); err != nil {
			return nil, err
		}
		c.entries[e.Key] = e
	}
	c.keys = make([]string, 0, len(c.entries))
	for k := range c.entries {
		c.keys = append(c.keys, k)
	}
	sort.Strings(c.keys)
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(DefaultEntries()...)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in table is invalid: %v", err))
	}
	return c
}

// Extend returns a new catalog with extra entries layered over c.
func (c *Catalog) Extend(extra ...Entry) (*Catalog, error) {
	all := make([]Entry, 0, len(c.entries)+len(extra))
	for _, k := range c.keys {
		all = append(all, c.entries[k])
	}
	return New(append(all, extra...)...)
}

// Resolve looks up key.
func (c *Catalog) Resolve(key string) (Entry, error) {
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownErrorKey, key)
	}
	return e, nil
}

// MustResolve is Resolve for keys already checked with Require.
func (c *Catalog) MustResolve(key string) Entry {
	e, err := c.Resolve(key)
	if err != nil {
		panic(err)
	}
	return e
}

// Require reports the first key missing from the catalog.
func (c *Catalog) Require(keys ...string) error {
	for _, k := range keys {
		if _, err := c.Resolve(k); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
