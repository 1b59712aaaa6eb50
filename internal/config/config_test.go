// ABOUTME: Tests for config loading, env expansion, and hook entry validation
// ABOUTME: Covers duration parsing and the continue_on_error default

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valet-labs/valet/internal/hooks"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/valet-test.db
logging:
  level: debug
  format: json
orchestrator:
  confidence_threshold: 0.6
  max_delegations: 2
  delegation_timeout: 90s
hooks:
  - event: UserPromptSubmit
    command: ./hooks/continuity.sh
    timeout: 5s
  - event: PreToolUse
    command: ./hooks/policy.sh
    continue_on_error: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/valet-test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 90*time.Second, cfg.Orchestrator.DelegationTimeout)

	require.Len(t, cfg.Hooks, 2)
	assert.Equal(t, 5*time.Second, cfg.Hooks[0].Timeout)
	assert.Nil(t, cfg.Hooks[0].ContinueOnError)
	require.NotNil(t, cfg.Hooks[1].ContinueOnError)
	assert.False(t, *cfg.Hooks[1].ContinueOnError)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("VALET_DB_PATH", "/data/valet.db")
	path := writeConfig(t, `
database:
  path: ${VALET_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/valet.db", cfg.Database.Path)
}

func TestLoad_RejectsUnknownHookEvent(t *testing.T) {
	path := writeConfig(t, `
database:
  path: valet.db
hooks:
  - event: PreCompact
    command: ./x.sh
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PreCompact")
}

func TestLoad_RejectsMissingCommand(t *testing.T) {
	path := writeConfig(t, `
database:
  path: valet.db
hooks:
  - event: Stop
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsBadThreshold(t *testing.T) {
	path := writeConfig(t, `
database:
  path: valet.db
orchestrator:
  confidence_threshold: 1.5
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestHookRegistrations(t *testing.T) {
	off := false
	cfg := &Config{
		Database: DatabaseConfig{Path: "valet.db"},
		Hooks: []HookConfig{
			{Event: "PreToolUse", Command: "a.sh", Timeout: time.Second},
			{Event: "PreToolUse", Command: "b.sh", ContinueOnError: &off},
		},
	}
	require.NoError(t, cfg.Validate())

	regs := cfg.HookRegistrations("/srv/valet")
	require.Len(t, regs, 2)
	assert.Equal(t, hooks.PreToolUse, regs[0].Event)
	assert.False(t, regs[0].StopOnError)
	assert.True(t, regs[1].StopOnError)

	runner := hooks.NewRunner("/srv/valet", nil)
	require.NoError(t, runner.Register(regs))
	assert.Equal(t, 2, runner.Registered(hooks.PreToolUse))
}
