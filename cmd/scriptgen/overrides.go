package main

import (
	"strings"
	"time"

	"github.com/ibreez3/novel-prep/config"
)

// overrides are the command-line values that win over the config file.
// Empty strings and a negative Delay leave the config alone; a zero Delay
// turns request spacing off.
type overrides struct {
	Provider string
	Model    string
	APIKey   string
	Delay    time.Duration
}

func (o overrides) apply(cfg *config.Config) {
	if o.Provider != "" {
		cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	}
	if o.Model != "" {
		cfg.Gemini.Model = o.Model
		cfg.OpenAI.Model = o.Model
	}
	if o.APIKey != "" {
		cfg.Gemini.APIKey = o.APIKey
		cfg.OpenAI.APIKey = o.APIKey
	}
	if o.Delay >= 0 {
		cfg.LLM.DelayMs = int(o.Delay.Milliseconds())
	}
}
