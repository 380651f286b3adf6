package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server  Server  `yaml:"server" envPrefix:"SERVER_"`
	LLM     LLM     `yaml:"llm" envPrefix:"LLM_"`
	Gemini  Gemini  `yaml:"gemini" envPrefix:"GEMINI_"`
	OpenAI  OpenAI  `yaml:"openai" envPrefix:"OPENAI_"`
	Chapter Chapter `yaml:"chapter" envPrefix:"CHAPTER_"`
	Output  Output  `yaml:"output" envPrefix:"OUTPUT_"`
	Log     Log     `yaml:"log" envPrefix:"LOG_"`
}

type Server struct {
	Port          int `yaml:"port" env:"PORT"`
	JobTimeoutMin int `yaml:"job_timeout_min" env:"JOB_TIMEOUT_MIN"`
}

type LLM struct {
	Provider          string `yaml:"provider" env:"PROVIDER"`
	PromptFile        string `yaml:"prompt_file" env:"PROMPT_FILE"`
	DelayMs           int    `yaml:"delay_ms" env:"DELAY_MS"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC"`
}

type Gemini struct {
	Model     string `yaml:"model" env:"MODEL"`
	APIKeyEnv string `yaml:"api_key_env" env:"API_KEY_ENV"`
	APIKey    string `yaml:"-"`
}

type OpenAI struct {
	BaseURL   string `yaml:"base_url" env:"BASE_URL"`
	Model     string `yaml:"model" env:"MODEL"`
	APIKeyEnv string `yaml:"api_key_env" env:"API_KEY_ENV"`
	APIKey    string `yaml:"-"`
}

type Chapter struct {
	Encoding string `yaml:"encoding" env:"ENCODING"`
	OutDir   string `yaml:"out_dir" env:"OUT_DIR"`
}

type Output struct {
	Dir string `yaml:"dir" env:"DIR"`
}

type Log struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// EnvPrefix is prepended to every override variable, e.g. NOVELPREP_LLM_DELAY_MS.
const EnvPrefix = "NOVELPREP_"

// Load reads the YAML file at path (a missing file is fine), then .env, then
// NOVELPREP_* overrides, and fills defaults for whatever is still empty.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, err
		}
	}
	_ = godotenv.Load()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	applyDefaults(&cfg)
	cfg.Gemini.APIKey = os.Getenv(cfg.Gemini.APIKeyEnv)
	cfg.OpenAI.APIKey = os.Getenv(cfg.OpenAI.APIKeyEnv)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.JobTimeoutMin == 0 {
		cfg.Server.JobTimeoutMin = 60
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderGemini
	}
	if cfg.LLM.DelayMs == 0 {
		cfg.LLM.DelayMs = 2000
	}
	if cfg.LLM.RequestTimeoutSec == 0 {
		cfg.LLM.RequestTimeoutSec = 120
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash-lite"
	}
	if cfg.Gemini.APIKeyEnv == "" {
		cfg.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Chapter.Encoding == "" {
		cfg.Chapter.Encoding = "utf-8"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Model returns the configured model of the active provider.
func (c Config) Model() string {
	if c.LLM.Provider == ProviderOpenAI {
		return c.OpenAI.Model
	}
	return c.Gemini.Model
}

// APIKey returns the key of the active provider or an error naming the
// variable it was expected in.
func (c Config) APIKey() (string, error) {
	key, envName := c.Gemini.APIKey, c.Gemini.APIKeyEnv
	if c.LLM.Provider == ProviderOpenAI {
		key, envName = c.OpenAI.APIKey, c.OpenAI.APIKeyEnv
	}
	if key == "" {
		return "", fmt.Errorf("missing %s API key in env %s", c.LLM.Provider, envName)
	}
	return key, nil
}

func (c Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.DelayMs < 0 {
		return fmt.Errorf("llm.delay_ms must be >= 0")
	}
	return nil
}
