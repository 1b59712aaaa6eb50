// ABOUTME: Interactive chat command for valetd
// ABOUTME: Runs the full butler stack against a terminal session

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valet-labs/valet/internal/agent"
	"github.com/valet-labs/valet/internal/builtins"
	"github.com/valet-labs/valet/internal/catalog"
	"github.com/valet-labs/valet/internal/config"
	"github.com/valet-labs/valet/internal/confirm"
	"github.com/valet-labs/valet/internal/hooks"
	"github.com/valet-labs/valet/internal/orchestrator"
	"github.com/valet-labs/valet/internal/permission"
	"github.com/valet-labs/valet/internal/store"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session with the butler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runChat(ctx)
		},
	}
}

func runChat(ctx context.Context) error {
	cfg, cfgSource, err := loadConfig()
	if err != nil {
		return err
	}

	printBanner(cfgSource)
	logger := setupLogger(cfg.Logging)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("loading tool catalog: %w", err)
		}
	}

	projectRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	runner := hooks.NewRunner(projectRoot, logger)
	if err := runner.Register(cfg.HookRegistrations(projectRoot)); err != nil {
		return fmt.Errorf("registering hooks: %w", err)
	}

	sessions := permission.NewSessionRegistry()
	gate := permission.NewGate(cat, sessions, st, logger)

	workspace := builtins.NewWorkspace()
	approver := confirm.NewTerminalApprover(os.Stdin, os.Stdout)
	exec := agent.NewToolExecutor(gate, runner, approver, workspace.Tools(), logger)

	registry := orchestrator.NewRegistry()
	if err := builtins.Specialists(exec, registry); err != nil {
		return fmt.Errorf("binding specialists: %w", err)
	}

	orch := orchestrator.New(st, runner, registry,
		builtins.NewKeywordClassifier(),
		builtins.NewTemplateSynthesizer(),
		orchestratorOptions(cfg.Orchestrator),
		logger,
	)

	sessionID := uuid.NewString()
	orch.StartSession(ctx, sessionID)
	defer orch.EndSession(context.WithoutCancel(ctx), sessionID)

	logger.Info("session started",
		"session_id", sessionID,
		"tools", cat.Len(),
		"hooks", len(cfg.Hooks),
	)

	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)
	gray.Println("Type a request, /reset to clear session grants, /quit to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		green.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			gray.Println("Goodbye.")
			return nil
		case "/reset":
			sessions.Reset()
			gray.Println("Session grants cleared.")
			continue
		}

		reply, err := orch.HandleUserMessage(ctx, sessionID, line)
		if err != nil {
			logger.Error("turn failed", "error", err)
			color.Red("something went wrong: %v", err)
			continue
		}

		if len(reply.DelegatedTo) > 0 {
			names := make([]string, len(reply.DelegatedTo))
			for i, id := range reply.DelegatedTo {
				names[i] = string(id)
			}
			gray.Printf("[delegated to %s]\n", strings.Join(names, ", "))
		}
		fmt.Printf("valet> %s\n", reply.Text)
	}
}

func orchestratorOptions(cfg config.OrchestratorConfig) orchestrator.Options {
	return orchestrator.Options{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		DelegationTimeout:   cfg.DelegationTimeout,
		MaxDelegations:      cfg.MaxDelegations,
		HistoryLimit:        cfg.HistoryLimit,
	}
}
