package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("gemini: empty response")

type Client struct {
	cli *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Chat(ctx context.Context, model string, system string, user string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if strings.TrimSpace(system) != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}
	resp, err := c.cli.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
