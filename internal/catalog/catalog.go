// Package catalog holds the read-only widget capability table: the static
// metadata (display name, category, license tier, default grid span) for every
// widget type the dashboard can place.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"finboard/internal/dashboard"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Entry is the capability record for one widget type.
type Entry struct {
	Type           string                `yaml:"type" json:"type"`
	Name           string                `yaml:"name" json:"name"`
	Category       string                `yaml:"category" json:"category"`
	Tier           dashboard.LicenseTier `yaml:"tier" json:"tier"`
	DefaultColSpan int                   `yaml:"defaultColSpan" json:"defaultColSpan"`
}

// Catalog is an immutable lookup from widget type to capability entry.
type Catalog struct {
	entries map[string]Entry
	types   []string
}

type catalogFile struct {
	Widgets []Entry `yaml:"widgets"`
}

// New builds a catalog from the given entries, validating each record.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog has no widgets")
	}

	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.Type == "" {
			return nil, fmt.Errorf("catalog entry with empty type")
		}
		if e.Name == "" {
			return nil, fmt.Errorf("widget %q: name is required", e.Type)
		}
		if e.DefaultColSpan <= 0 {
			return nil, fmt.Errorf("widget %q: defaultColSpan must be positive", e.Type)
		}
		if _, err := dashboard.ParseLicenseTier(string(e.Tier)); err != nil {
			return nil, fmt.Errorf("widget %q: %w", e.Type, err)
		}
		if _, ok := c.entries[e.Type]; ok {
			return nil, fmt.Errorf("widget %q listed twice", e.Type)
		}
		c.entries[e.Type] = e
		c.types = append(c.types, e.Type)
	}
	return c, nil
}

// Parse reads a YAML capability file.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(file.Widgets)
}

// Load reads a capability file from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog shipped with the service.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		// The embedded file is validated by tests; failing here means the
		// binary itself is broken.
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Lookup returns the entry for a widget type.
func (c *Catalog) Lookup(widgetType string) (Entry, bool) {
	e, ok := c.entries[widgetType]
	return e, ok
}

// Has reports whether the widget type exists.
func (c *Catalog) Has(widgetType string) bool {
	_, ok := c.entries[widgetType]
	return ok
}

// Entries returns all entries in file order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.types))
	for _, t := range c.types {
		out = append(out, c.entries[t])
	}
	return out
}

// Len reports the number of widget types.
func (c *Catalog) Len() int { return len(c.entries) }
