// ABOUTME: Inspection commands for valetd
// ABOUTME: audit queries the decision log, tools prints the catalog, hooks dry-runs an event

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/valet-labs/valet/internal/catalog"
	"github.com/valet-labs/valet/internal/hooks"
	"github.com/valet-labs/valet/internal/store"
)

func auditCmd() *cobra.Command {
	var (
		tool     string
		decision string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the tool permission audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tool == "" && decision == "" {
				return fmt.Errorf("pass --tool or --decision")
			}
			if tool != "" && decision != "" {
				return fmt.Errorf("--tool and --decision are exclusive")
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			var records []store.AuditRecord
			if tool != "" {
				records, err = st.QueryAuditByTool(ctx, tool, limit)
			} else {
				records, err = st.QueryAuditByDecision(ctx, store.AuditDecision(decision), limit)
			}
			if err != nil {
				return fmt.Errorf("querying audit log: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("no matching records")
				return nil
			}
			for _, r := range records {
				printAuditRecord(r)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "filter by tool name")
	cmd.Flags().StringVar(&decision, "decision", "", "filter by decision (approved, denied, auto_allowed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max records (default 100, cap 1000)")
	return cmd
}

func printAuditRecord(r store.AuditRecord) {
	var c *color.Color
	switch r.Decision {
	case store.DecisionApproved:
		c = color.New(color.FgGreen)
	case store.DecisionDenied:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgHiBlack)
	}

	fmt.Printf("%s  %-14s ", r.Timestamp.Local().Format(time.DateTime), r.Tool)
	c.Printf("%-13s", r.Decision)
	if r.AlwaysAllow {
		color.New(color.FgYellow).Print(" [always-allow]")
	}
	fmt.Println()
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog with risk tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			cat := catalog.Default()
			if cfg.Catalog.Path != "" {
				cat, err = catalog.LoadFile(cfg.Catalog.Path)
				if err != nil {
					return fmt.Errorf("loading tool catalog: %w", err)
				}
			}

			for _, t := range cat.Tools() {
				fmt.Printf("%-16s ", t.Name)
				switch t.Tier {
				case catalog.TierRead:
					color.Green("%s", t.Tier)
				case catalog.TierWrite:
					color.Yellow("%s", t.Tier)
				case catalog.TierDestructive:
					color.Red("%-12s %s", t.Tier, t.Warning)
				}
			}
			return nil
		},
	}
}

func hooksCmd() *cobra.Command {
	event := string(hooks.SessionStart)

	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Dry-run the configured hooks for one event",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Logging)

			projectRoot, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving project root: %w", err)
			}

			runner := hooks.NewRunner(projectRoot, logger)
			if err := runner.Register(cfg.HookRegistrations(projectRoot)); err != nil {
				return fmt.Errorf("registering hooks: %w", err)
			}

			ev := hooks.Event(event)
			if !ev.Valid() {
				return fmt.Errorf("unknown event %q (valid: %v)", event, hooks.ValidEvents)
			}
			if runner.Registered(ev) == 0 {
				fmt.Printf("no hooks registered for %s\n", ev)
				return nil
			}

			results := runner.Fire(context.Background(), ev, hooks.Payload{"dry_run": true})
			for _, res := range results {
				status := color.GreenString("ok")
				if res.Failed() {
					status = color.RedString("failed: %s", res.Err)
				}
				fmt.Printf("%-24s %8s  %s\n", res.Handler, res.Elapsed.Round(time.Millisecond), status)
				if res.Message != "" {
					fmt.Printf("  %s\n", res.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&event, "event", event, "lifecycle event to fire")
	return cmd
}
