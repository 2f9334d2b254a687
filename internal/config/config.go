package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration. Values come from an optional YAML
// file, with environment variables taking precedence over both the file and
// the built-in defaults.
type Config struct {
	Port string `yaml:"port"`

	RedisURL string `yaml:"redis_url"`

	Supabase SupabaseConfig `yaml:"supabase"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	LLM      LLMConfig      `yaml:"llm"`
	Pricing  PricingConfig  `yaml:"pricing"`

	// SystemPromptPath points at the waiter persona prompt file. When the
	// file is missing a built-in default prompt is used.
	SystemPromptPath string `yaml:"system_prompt_path"`

	SessionTimeoutMinutes int `yaml:"session_timeout_minutes"`
	FeedbackDelayMinutes  int `yaml:"feedback_delay_minutes"`
}

// SupabaseConfig holds Supabase connection settings.
type SupabaseConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// WhatsAppConfig holds WhatsApp Cloud API settings.
type WhatsAppConfig struct {
	APIURL        string `yaml:"api_url"`
	PhoneNumberID string `yaml:"phone_number_id"`
	AccessToken   string `yaml:"access_token"`
	VerifyToken   string `yaml:"verify_token"`
}

// LLMConfig holds generative backend settings.
type LLMConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	UseMock   bool   `yaml:"use_mock"`
}

// PricingConfig holds per-million-token unit costs in USD and the fixed
// conversion rate into the display currency.
type PricingConfig struct {
	InputPer1M   float64 `yaml:"input_per_1m"`
	OutputPer1M  float64 `yaml:"output_per_1m"`
	ExchangeRate float64 `yaml:"exchange_rate"`
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists; an empty path skips the file entirely), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port: "8080",
		WhatsApp: WhatsAppConfig{
			APIURL: "https://graph.facebook.com/v18.0",
		},
		LLM: LLMConfig{
			Model:     "claude-3-5-haiku-latest",
			MaxTokens: 1024,
		},
		Pricing: PricingConfig{
			InputPer1M:   0.075,
			OutputPer1M:  0.30,
			ExchangeRate: 280,
		},
		SessionTimeoutMinutes: 60,
		FeedbackDelayMinutes:  30,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.Supabase.URL = getEnv("SUPABASE_URL", cfg.Supabase.URL)
	cfg.Supabase.APIKey = getEnv("SUPABASE_API_KEY", cfg.Supabase.APIKey)
	cfg.WhatsApp.APIURL = getEnv("WHATSAPP_API_URL", cfg.WhatsApp.APIURL)
	cfg.WhatsApp.PhoneNumberID = getEnv("WHATSAPP_PHONE_NUMBER_ID", cfg.WhatsApp.PhoneNumberID)
	cfg.WhatsApp.AccessToken = getEnv("WHATSAPP_ACCESS_TOKEN", cfg.WhatsApp.AccessToken)
	cfg.WhatsApp.VerifyToken = getEnv("WHATSAPP_VERIFY_TOKEN", cfg.WhatsApp.VerifyToken)
	cfg.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.UseMock = getBoolEnv("USE_MOCK_LLM", cfg.LLM.UseMock)
	cfg.SystemPromptPath = getEnv("SYSTEM_PROMPT_PATH", cfg.SystemPromptPath)
	cfg.SessionTimeoutMinutes = getIntEnv("SESSION_TIMEOUT_MINUTES", cfg.SessionTimeoutMinutes)
	cfg.FeedbackDelayMinutes = getIntEnv("FEEDBACK_DELAY_MINUTES", cfg.FeedbackDelayMinutes)

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
