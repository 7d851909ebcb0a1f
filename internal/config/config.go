package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"
)

// Config aggregates every runtime setting for the service.
type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Draw   DrawConfig
	Log    LogConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	engine, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	draw, err := loadDrawConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Engine: engine, Draw: draw, Log: loadLogConfig()}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// EngineConfig describes the Ollama-backed drawing engine.
type EngineConfig struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

func loadEngineConfig() (EngineConfig, error) {
	maxTokens := 2000
	if override, err := parseOptionalIntEnv("DRAW_MAX_TOKENS"); err != nil {
		return EngineConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return EngineConfig{}, fmt.Errorf("invalid DRAW_MAX_TOKENS value %d: must be positive", *override)
		}
		maxTokens = *override
	}

	temperature := 0.9
	if override, err := parseOptionalFloatEnv("DRAW_TEMPERATURE"); err != nil {
		return EngineConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	return EngineConfig{
		BaseURL:     getEnvOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		Model:       getEnvOrDefault("DRAW_MODEL", "gpt-oss:20b"),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}

// NewChatModel builds an Ollama chat model for the given model name, falling
// back to the configured default when the name is empty.
func (c EngineConfig) NewChatModel(ctx context.Context, modelName string) (model.BaseChatModel, error) {
	if modelName == "" {
		modelName = c.Model
	}

	cfg := &ollama.ChatModelConfig{
		BaseURL: c.BaseURL,
		Model:   modelName,
		Options: &api.Options{
			NumPredict:  c.MaxTokens,
			Temperature: float32(c.Temperature),
		},
		Thinking: thinkingFor(modelName),
	}

	return ollama.NewChatModel(ctx, cfg)
}

// gpt-oss models accept a thinking effort level; keep it low so strokes
// start flowing quickly. Other models reject the option entirely.
func thinkingFor(modelName string) *api.ThinkValue {
	if strings.Contains(strings.ToLower(modelName), "gpt-oss") {
		return &api.ThinkValue{Value: "low"}
	}
	return nil
}

// DrawConfig bounds a single generation.
type DrawConfig struct {
	StartDeadline time.Duration // max wait for the first fragment
	IdleGap       time.Duration // max gap between fragments
	HardLimit     time.Duration // max total generation duration
	MaxPromptLen  int           // max prompt length in runes
}

func loadDrawConfig() (DrawConfig, error) {
	start, err := parseSecondsEnv("DRAW_START_DEADLINE", 60*time.Second)
	if err != nil {
		return DrawConfig{}, err
	}

	idle, err := parseSecondsEnv("DRAW_IDLE_GAP", 60*time.Second)
	if err != nil {
		return DrawConfig{}, err
	}

	hard, err := parseSecondsEnv("DRAW_HARD_LIMIT", 300*time.Second)
	if err != nil {
		return DrawConfig{}, err
	}

	maxLen := 512
	if override, err := parseOptionalIntEnv("DRAW_MAX_PROMPT_LEN"); err != nil {
		return DrawConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return DrawConfig{}, fmt.Errorf("invalid DRAW_MAX_PROMPT_LEN value %d: must be positive", *override)
		}
		maxLen = *override
	}

	return DrawConfig{
		StartDeadline: start,
		IdleGap:       idle,
		HardLimit:     hard,
		MaxPromptLen:  maxLen,
	}, nil
}

// LogConfig describes logger level and output format.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "console"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseSecondsEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	override, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if override == nil {
		return defaultValue, nil
	}
	if *override < 1 {
		return 0, fmt.Errorf("invalid %s value %d: must be positive", key, *override)
	}
	return time.Duration(*override) * time.Second, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
