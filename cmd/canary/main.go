// Command canary is a terminal assistant that answers questions about CI
// test results. It chats with an LLM and exposes a tool that queries an
// Azure-DevOps-compatible build server for test-case outcomes.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... canary [flags]
//	GEMINI_API_KEY=gk-...   canary [flags]
//
// The query tool reads AZDO_COLLECTION_URL and AZDO_ACCESS_TOKEN from the
// environment at invocation time.
//
// Flags:
//
//	-provider string      Provider: anthropic, gemini (auto-detected from env vars if omitted)
//	-model string         Model ID (default: provider default)
//	-api-key string       API key (overrides provider's env var)
//	-session string       Path to session file to resume
//	-system-prompt string Path to system prompt file (default: .canary/prompt.md)
//	-plain                Line-oriented REPL instead of the TUI
//	-debug                Log build-server requests to stderr
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jlisowski/canary"
	"github.com/jlisowski/canary/agent"
	bt "github.com/jlisowski/canary/bubbletea"
	"github.com/jlisowski/canary/dispatch"
	canaryjson "github.com/jlisowski/canary/json"
	"github.com/rs/zerolog"
)

const defaultPromptPath = ".canary/prompt.md"

const defaultSystemPrompt = "You are a CI assistant. You can look up test results " +
	"from the build server with the query_test_results tool. When a query fails, " +
	"explain which step failed using the returned trace and ask for any missing input."

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "canary: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		model        = flag.String("model", "", "Model ID (provider-specific)")
		sessionPath  = flag.String("session", "", "Path to session file to resume")
		promptPath   = flag.String("system-prompt", defaultPromptPath, "Path to system prompt file")
		providerFlag = flag.String("provider", "", "Provider: anthropic, gemini (auto-detected from env vars if omitted)")
		apiKey       = flag.String("api-key", "", "API key (overrides provider's env var)")
		plain        = flag.Bool("plain", false, "Line-oriented REPL instead of the TUI")
		debug        = flag.Bool("debug", false, "Log build-server requests to stderr")
	)
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := zerolog.Nop()
	if *debug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	// Resolve provider. Env vars are read here and passed as values.
	provider, err := resolveProvider(ctx, *providerFlag, *apiKey,
		os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		return err
	}

	// Tool registry is populated once at startup and read-only afterwards.
	registry, err := newRegistry(logger)
	if err != nil {
		return fmt.Errorf("register tools: %w", err)
	}
	invoker := dispatch.New(registry)
	catalog := registry.Catalog()

	loop := agent.New(provider, invoker)

	session, err := loadOrCreateSession(*sessionPath, *promptPath)
	if err != nil {
		return err
	}

	if *plain {
		err = runREPL(ctx, loop, &session, catalog, *model)
	} else {
		agentFn := func(ctx context.Context, s *canary.Session, onEvent func(canary.Event)) error {
			opts := []agent.RunOption{agent.WithEventHandler(onEvent)}
			if *model != "" {
				opts = append(opts, agent.WithModel(*model))
			}
			return loop.Run(ctx, s, catalog, opts...)
		}
		config := bt.Config{ModelName: *model}
		err = bt.Run(ctx, bt.New(agentFn, &session, canary.DefaultTheme(), config))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Save session on exit.
	if *sessionPath != "" {
		if err := canaryjson.Save(*sessionPath, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	} else if len(session.Messages) > 0 {
		savePath := defaultSessionPath(session.ID)
		if err := canaryjson.Save(savePath, session); err != nil {
			return fmt.Errorf("auto-save session: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Session saved to %s\n", savePath)
	}

	return nil
}

func loadOrCreateSession(sessionPath, promptPath string) (canary.Session, error) {
	// Load existing session if path provided.
	if sessionPath != "" {
		s, err := canaryjson.Load(sessionPath)
		if err != nil {
			return canary.Session{}, fmt.Errorf("load session: %w", err)
		}
		return s, nil
	}

	// Load system prompt. Tolerate missing default; fail on all other errors.
	systemPrompt := defaultSystemPrompt
	data, err := os.ReadFile(promptPath)
	switch {
	case err == nil:
		systemPrompt = string(data)
	case errors.Is(err, os.ErrNotExist) && promptPath == defaultPromptPath:
		// Default prompt file doesn't exist; use built-in default.
	default:
		return canary.Session{}, fmt.Errorf("read system prompt: %w", err)
	}

	now := time.Now()
	return canary.Session{
		ID:           uuid.NewString(),
		SystemPrompt: systemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func defaultSessionPath(id string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".canary", "sessions", id+".json")
}
