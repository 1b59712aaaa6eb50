// ABOUTME: Static tool catalog mapping tool names to risk tiers and warnings
// ABOUTME: Loaded once at startup; unknown tool names are a hard configuration error

package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrUnknownTool indicates a tool name with no catalog entry. Callers must
// treat this as fatal for the specific tool call, never as a silent allow.
var ErrUnknownTool = errors.New("unknown tool")

// Tier is the static risk classification of a tool.
type Tier string

const (
	TierRead        Tier = "read"
	TierWrite       Tier = "write"
	TierDestructive Tier = "destructive"
)

// ValidTiers lists all valid risk tiers.
var ValidTiers = []Tier{TierRead, TierWrite, TierDestructive}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierRead, TierWrite, TierDestructive:
		return true
	}
	return false
}

// Tool is a single catalog entry.
type Tool struct {
	Name    string `toml:"name"`
	Tier    Tier   `toml:"tier"`
	Warning string `toml:"warning"` // required when Tier is destructive
}

// Catalog is the immutable set of tools agents are permitted to invoke.
// It is built once at startup and read-only afterwards.
type Catalog struct {
	tools map[string]Tool
	order []string
}

// New builds a catalog from a list of tools, validating every entry.
func New(tools []Tool) (*Catalog, error) {
	c := &Catalog{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("catalog entry with empty name")
		}
		if !t.Tier.Valid() {
			return nil, fmt.Errorf("tool %q: invalid tier %q", t.Name, t.Tier)
		}
		if t.Tier == TierDestructive && t.Warning == "" {
			return nil, fmt.Errorf("tool %q: destructive tier requires warning text", t.Name)
		}
		if _, exists := c.tools[t.Name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		c.tools[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c, nil
}

// catalogFile is the on-disk TOML shape.
type catalogFile struct {
	Tools []Tool `toml:"tools"`
}

// LoadFile reads a TOML catalog file and builds a validated Catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var cf catalogFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	c, err := New(cf.Tools)
	if err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return c, nil
}

// Lookup returns the catalog entry for name.
// Returns ErrUnknownTool when no entry exists.
func (c *Catalog) Lookup(name string) (Tool, error) {
	t, ok := c.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t, nil
}

// Tools returns all entries in declaration order.
func (c *Catalog) Tools() []Tool {
	out := make([]Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.tools)
}
