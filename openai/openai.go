package openai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrNoChoices is returned when the endpoint answers with an empty choice list.
var ErrNoChoices = errors.New("openai: no choices in response")

type Client struct {
	cli openai.Client
}

func NewClient(apiKey string, baseURL string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{cli: openai.NewClient(opts...)}
}

// Chat sends one request; the system message is omitted when empty.
func (c *Client) Chat(ctx context.Context, model string, system string, user string) (string, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(user))
	res, err := c.cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    model,
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", ErrNoChoices
	}
	return res.Choices[0].Message.Content, nil
}
