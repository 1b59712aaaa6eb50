// ABOUTME: Shell-command hook handler speaking JSON over stdin/stdout
// ABOUTME: Exit 0 parses stdout JSON, exit 2 is a deny, other exits are handler errors

package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// commandOutput is the JSON shape a hook command may print on exit 0.
// All fields are optional; an empty or non-JSON stdout is a plain success.
type commandOutput struct {
	Decision           string          `json:"decision,omitempty"`
	Reason             string          `json:"reason,omitempty"`
	SystemMessage      string          `json:"systemMessage,omitempty"`
	HookSpecificOutput *specificOutput `json:"hookSpecificOutput,omitempty"`
}

type specificOutput struct {
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
}

// CommandHandler runs a shell command with the event payload as JSON on stdin.
type CommandHandler struct {
	Command string
	Dir     string // working directory; empty uses the process cwd
}

// Execute runs the command under ctx. The payload is serialized to stdin;
// stdout is parsed for a structured result when the command exits zero.
// Exit code 2 maps to a deny decision with stderr as the message.
func (h *CommandHandler) Execute(ctx context.Context, payload Payload) (Result, error) {
	input, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshaling hook payload: %w", err)
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", h.Command)
	cmd.Dir = h.Dir
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && exitErr.ExitCode() == 2 {
			// Exit 2 is the documented blocking-deny convention: stderr
			// carries the reason shown to the caller.
			return Result{
				PermissionDecision: DecisionDeny,
				Message:            strings.TrimSpace(stderr.String()),
			}, nil
		}
		return Result{}, fmt.Errorf("hook command failed: %w: %s", runErr, strings.TrimSpace(stderr.String()))
	}

	return parseCommandOutput(stdout.Bytes()), nil
}

// parseCommandOutput maps a successful command's stdout to a Result.
// Non-JSON output is treated as a plain success with no structured fields.
func parseCommandOutput(out []byte) Result {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return Result{}
	}

	var parsed commandOutput
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return Result{Message: string(trimmed)}
	}

	res := Result{Message: parsed.SystemMessage}
	switch parsed.Decision {
	case "block", "deny":
		res.PermissionDecision = DecisionDeny
		if res.Message == "" {
			res.Message = parsed.Reason
		}
	case "approve", "allow":
		res.PermissionDecision = DecisionAllow
	}
	if so := parsed.HookSpecificOutput; so != nil {
		if so.PermissionDecision != "" {
			res.PermissionDecision = so.PermissionDecision
			if res.Message == "" {
				res.Message = so.PermissionDecisionReason
			}
		}
		res.AdditionalContext = so.AdditionalContext
	}
	return res
}
