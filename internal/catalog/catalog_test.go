// ABOUTME: Tests for tool catalog construction, validation, and lookup
// ABOUTME: Covers tier validation, destructive warning requirement, and TOML loading

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidCatalog(t *testing.T) {
	c, err := New([]Tool{
		{Name: "get_emails", Tier: TierRead},
		{Name: "send_email", Tier: TierWrite},
		{Name: "delete_contact", Tier: TierDestructive, Warning: "gone forever"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	tool, err := c.Lookup("send_email")
	require.NoError(t, err)
	assert.Equal(t, TierWrite, tool.Tier)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		tools []Tool
	}{
		{"empty name", []Tool{{Name: "", Tier: TierRead}}},
		{"bad tier", []Tool{{Name: "x", Tier: Tier("severe")}}},
		{"destructive without warning", []Tool{{Name: "rm", Tier: TierDestructive}}},
		{"duplicate name", []Tool{{Name: "x", Tier: TierRead}, {Name: "x", Tier: TierWrite}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tools)
			assert.Error(t, err)
		})
	}
}

func TestLookup_UnknownTool(t *testing.T) {
	c, err := New([]Tool{{Name: "get_emails", Tier: TierRead}})
	require.NoError(t, err)

	_, err = c.Lookup("mystery_tool")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
}

func TestTools_PreservesDeclarationOrder(t *testing.T) {
	c, err := New([]Tool{
		{Name: "c", Tier: TierRead},
		{Name: "a", Tier: TierRead},
		{Name: "b", Tier: TierRead},
	})
	require.NoError(t, err)

	var names []string
	for _, tool := range c.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.toml")
	content := `
[[tools]]
name = "send_email"
tier = "write"

[[tools]]
name = "delete_contact"
tier = "destructive"
warning = "This cannot be undone."
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	tool, err := c.Lookup("delete_contact")
	require.NoError(t, err)
	assert.Equal(t, TierDestructive, tool.Tier)
	assert.Equal(t, "This cannot be undone.", tool.Warning)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NotZero(t, c.Len())

	// Every destructive entry must carry warning text.
	for _, tool := range c.Tools() {
		if tool.Tier == TierDestructive {
			assert.NotEmpty(t, tool.Warning, "tool %s", tool.Name)
		}
	}

	tool, err := c.Lookup("delete_contact")
	require.NoError(t, err)
	assert.Equal(t, TierDestructive, tool.Tier)
}
