package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all loom configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	LLM      LLMConfig      `toml:"llm"`
}

type ServerConfig struct {
	Bind        string `toml:"bind"`
	Port        int    `toml:"port"`
	CORSOrigins string `toml:"cors_origins"` // comma-separated, for the graph frontend
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	Provider     string `toml:"provider"` // "groq", "anthropic", "ollama"
	Model        string `toml:"model"`
	GroqKey      string `toml:"groq_key"`
	AnthropicKey string `toml:"anthropic_key"`
	OllamaURL    string `toml:"ollama_url"`
	OllamaModel  string `toml:"ollama_model"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:        "127.0.0.1",
			Port:        37717,
			CORSOrigins: "http://localhost:5173",
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		LLM: LLMConfig{
			Provider: "groq",
			Model:    "llama-3.3-70b-versatile",
		},
	}
}

// FromEnv returns the default config with environment overrides applied:
// GROQ_API_KEY, ANTHROPIC_API_KEY, LOOM_DB, LOOM_ADDR.
func FromEnv() Config {
	cfg := Default()

	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.LLM.GroqKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.AnthropicKey = key
		if cfg.LLM.GroqKey == "" {
			cfg.LLM.Provider = "anthropic"
			cfg.LLM.Model = ""
		}
	}
	if path := os.Getenv("LOOM_DB"); path != "" {
		cfg.Database.Path = path
	}
	if addr := os.Getenv("LOOM_ADDR"); addr != "" {
		cfg.Server.Bind = addr
	}
	return cfg
}

// Origins splits the comma-separated CORS origin list.
func (c *ServerConfig) Origins() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
