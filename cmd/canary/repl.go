package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jlisowski/canary"
	"github.com/jlisowski/canary/agent"
)

const exitSentinel = "exit"

// runREPL drives a plain line-oriented conversation on stdin/stdout. Used
// with -plain, and handy for piping transcripts in scripts.
func runREPL(ctx context.Context, loop *agent.Loop, session *canary.Session, tools []canary.Tool, model string) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		// The sentinel ends the session without reaching the model.
		if strings.EqualFold(text, exitSentinel) {
			return nil
		}

		session.Messages = append(session.Messages, canary.UserMessage{
			Content:   []canary.ContentBlock{canary.TextBlock{Text: text}},
			Timestamp: time.Now(),
		})

		opts := []agent.RunOption{agent.WithEventHandler(printEvent)}
		if model != "" {
			opts = append(opts, agent.WithModel(model))
		}
		if err := loop.Run(ctx, session, tools, opts...); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(os.Stderr, "canary: %v\n", err)
		}
	}
}

func printEvent(e canary.Event) {
	switch e := e.(type) {
	case canary.EventAssistantMessage:
		if text := e.Message.Text(); text != "" {
			fmt.Println(text)
		}
	case canary.EventToolCall:
		fmt.Printf("▶ %s %s\n", e.Call.Name, string(e.Call.Arguments))
	case canary.EventToolResult:
		if e.Result.Failed() {
			fmt.Printf("✗ %s: %s\n", e.ToolName, e.Result.Render())
		} else {
			fmt.Printf("✓ %s\n", e.ToolName)
		}
	}
}
