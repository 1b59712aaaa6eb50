// ABOUTME: Terminal confirmation surface for write and destructive tool calls
// ABOUTME: Destructive approval is two-step: show the warning, then re-type the tool name

package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// TerminalApprover prompts on a terminal for tool permissions.
type TerminalApprover struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewTerminalApprover creates an approver reading from in and writing to out.
func NewTerminalApprover(in io.Reader, out io.Writer) *TerminalApprover {
	return &TerminalApprover{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// ConfirmWrite asks a yes/no/always question for a write-tier tool.
func (a *TerminalApprover) ConfirmWrite(ctx context.Context, tool string, args map[string]any) (bool, bool, error) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(a.out, "\nPermission needed: %s\n", tool)
	a.printArgs(args)
	fmt.Fprint(a.out, "Allow? [y]es / [a]lways for this session / [n]o: ")

	answer, err := a.readLine(ctx)
	if err != nil {
		return false, false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, false, nil
	case "a", "always":
		return true, true, nil
	default:
		return false, false, nil
	}
}

// ConfirmDestructive presents the warning and requires the user to re-type
// the tool name before the call is approved. Anything else denies.
func (a *TerminalApprover) ConfirmDestructive(ctx context.Context, tool, warning string, args map[string]any) (bool, error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(a.out, "\nDESTRUCTIVE: %s\n", tool)
	if warning != "" {
		color.New(color.FgRed).Fprintf(a.out, "%s\n", warning)
	}
	a.printArgs(args)
	fmt.Fprintf(a.out, "Type the tool name (%s) to confirm, anything else to cancel: ", tool)

	answer, err := a.readLine(ctx)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(answer) == tool, nil
}

// printArgs renders a compact, stable-order argument summary.
func (a *TerminalApprover) printArgs(args map[string]any) {
	if len(args) == 0 {
		return
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %v\n", k, args[k])
	}
}

// readLine reads one line, honoring context cancellation between prompts.
func (a *TerminalApprover) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", fmt.Errorf("reading confirmation: %w", err)
		}
		return "", io.EOF
	}
	return a.in.Text(), nil
}

// AutoApprover approves or denies everything without prompting.
// Used for tests and headless runs where no terminal is attached.
type AutoApprover struct {
	Approve bool
}

// ConfirmWrite returns the configured verdict, never always-allow.
func (a *AutoApprover) ConfirmWrite(ctx context.Context, tool string, args map[string]any) (bool, bool, error) {
	return a.Approve, false, nil
}

// ConfirmDestructive returns the configured verdict.
func (a *AutoApprover) ConfirmDestructive(ctx context.Context, tool, warning string, args map[string]any) (bool, error) {
	return a.Approve, nil
}
