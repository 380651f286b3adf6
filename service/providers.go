package service

import (
	"context"
	"fmt"

	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/gemini"
	"github.com/ibreez3/novel-prep/openai"
	"github.com/ibreez3/novel-prep/script"
)

// NewClient builds the chat client of the configured provider.
func NewClient(ctx context.Context, cfg config.Config) (script.Client, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, key)
	case config.ProviderOpenAI:
		return openai.NewClient(key, cfg.OpenAI.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
