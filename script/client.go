package script

import "context"

// Client is a chat-style LLM endpoint. system may be empty.
type Client interface {
	Chat(ctx context.Context, model string, system string, user string) (string, error)
}
