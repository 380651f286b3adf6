package service

import (
	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/script"
	"github.com/ibreez3/novel-prep/textio"
	"github.com/ibreez3/novel-prep/wordcount"
)

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Ready bool   `json:"ready"`
}

type PresetResponse struct {
	Providers       []ProviderInfo    `json:"providers"`
	DefaultProvider string            `json:"default_provider"`
	DefaultPrompt   string            `json:"default_prompt"`
	DelayMs         int               `json:"delay_ms"`
	SplitLimit      int               `json:"split_limit"`
	Encodings       []string          `json:"encodings"`
	Notes           map[string]string `json:"notes"`
}

// GetPresets lists what a front end needs to fill its forms. Ready reports
// whether the provider's API key is present, never the key itself.
func GetPresets(cfg config.Config) PresetResponse {
	return PresetResponse{
		Providers: []ProviderInfo{
			{Name: config.ProviderGemini, Model: cfg.Gemini.Model, Ready: cfg.Gemini.APIKey != ""},
			{Name: config.ProviderOpenAI, Model: cfg.OpenAI.Model, Ready: cfg.OpenAI.APIKey != ""},
		},
		DefaultProvider: cfg.LLM.Provider,
		DefaultPrompt:   script.DefaultPrompt,
		DelayMs:         cfg.LLM.DelayMs,
		SplitLimit:      wordcount.Limit,
		Encodings:       []string{textio.UTF8, textio.GBK, textio.GB18030},
		Notes: map[string]string{
			"拆分规则": "4001-7999 字拆为上下两部分，8000-11999 字拆为上中下三部分，更长的按每 4000 字一部分编号",
			"脚本输出": "单个文件输出到同名 .json，文件夹输出到 {文件夹}_json",
		},
	}
}
