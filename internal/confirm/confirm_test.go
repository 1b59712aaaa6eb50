// ABOUTME: Tests for the terminal approval surface
// ABOUTME: Covers yes/always/no answers and the destructive re-type protocol

package confirm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmWrite_Answers(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		approved    bool
		alwaysAllow bool
	}{
		{"yes", "y\n", true, false},
		{"yes long", "yes\n", true, false},
		{"always", "a\n", true, true},
		{"no", "n\n", false, false},
		{"garbage", "whatever\n", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			a := NewTerminalApprover(strings.NewReader(tt.input), &out)

			approved, always, err := a.ConfirmWrite(context.Background(), "send_email", map[string]any{"to": "dana@example.com"})
			require.NoError(t, err)
			assert.Equal(t, tt.approved, approved)
			assert.Equal(t, tt.alwaysAllow, always)
			assert.Contains(t, out.String(), "send_email")
			assert.Contains(t, out.String(), "dana@example.com")
		})
	}
}

func TestConfirmDestructive_RequiresExactToolName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		approved bool
	}{
		{"exact name", "delete_contact\n", true},
		{"plain yes is not enough", "y\n", false},
		{"wrong name", "delete_event\n", false},
		{"empty", "\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			a := NewTerminalApprover(strings.NewReader(tt.input), &out)

			approved, err := a.ConfirmDestructive(context.Background(), "delete_contact", "This cannot be undone.", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.approved, approved)
			assert.Contains(t, out.String(), "This cannot be undone.")
		})
	}
}

func TestAutoApprover(t *testing.T) {
	allow := &AutoApprover{Approve: true}
	approved, always, err := allow.ConfirmWrite(context.Background(), "send_email", nil)
	require.NoError(t, err)
	assert.True(t, approved)
	assert.False(t, always)

	deny := &AutoApprover{}
	approved, err = deny.ConfirmDestructive(context.Background(), "delete_contact", "w", nil)
	require.NoError(t, err)
	assert.False(t, approved)
}
