// Package mock provides test doubles for canary interfaces using function fields.
package mock

import (
	"context"

	"github.com/jlisowski/canary"
)

// Interface compliance check.
var _ canary.Provider = (*Provider)(nil)

// Provider is a test double for canary.Provider.
// Set ChatFn before calling Chat.
type Provider struct {
	ChatFn func(ctx context.Context, req canary.Request) (canary.AssistantMessage, error)
}

// Chat delegates to ChatFn.
func (p *Provider) Chat(ctx context.Context, req canary.Request) (canary.AssistantMessage, error) {
	return p.ChatFn(ctx, req)
}

// ScriptedProvider returns a Provider that replays the given messages in
// order, one per Chat call. Calling it more times than there are messages
// panics, which surfaces scripting mistakes immediately in tests.
func ScriptedProvider(msgs ...canary.AssistantMessage) *Provider {
	i := 0
	return &Provider{
		ChatFn: func(_ context.Context, _ canary.Request) (canary.AssistantMessage, error) {
			if i >= len(msgs) {
				panic("mock: scripted provider exhausted")
			}
			msg := msgs[i]
			i++
			return msg, nil
		},
	}
}
