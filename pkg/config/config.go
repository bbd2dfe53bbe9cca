package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// AI
	LLMBaseURL      string
	LLMAPIKey       string
	ChatModel       string
	VisionModel     string
	ClassifierModel string

	// Discord
	DiscordBotToken string

	// Relationship engine
	MemoryLimit     int           // chat turns carried into the prompt and classifier window
	UpdateEvery     int           // emotional reassessment cadence, in inbound messages
	AmbientChance   float64       // probability of an unprompted interjection per message
	AmbientCooldown time.Duration // per-channel gap between unprompted interjections
	LLMTimeout      time.Duration // per-call deadline for generation and classification
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		Neo4jURI:        getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", "password"),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.groq.com/openai"),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		ChatModel:       getEnv("CHAT_MODEL", "llama-3.1-8b-instant"),
		VisionModel:     getEnv("VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		ClassifierModel: getEnv("CLASSIFIER_MODEL", "llama-3.1-8b-instant"),
		DiscordBotToken: getEnv("DISCORD_BOT_TOKEN", ""),
		MemoryLimit:     getEnvInt("MEMORY_LIMIT", 20),
		UpdateEvery:     getEnvInt("UPDATE_EVERY", 3),
		AmbientChance:   getEnvFloat("AMBIENT_CHANCE", 0.03),
		AmbientCooldown: time.Duration(getEnvInt("AMBIENT_COOLDOWN_SECONDS", 600)) * time.Second,
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("CHAT_MODEL is required")
	}
	if c.MemoryLimit < 1 {
		return fmt.Errorf("MEMORY_LIMIT must be at least 1")
	}
	if c.UpdateEvery < 1 {
		return fmt.Errorf("UPDATE_EVERY must be at least 1")
	}
	if c.AmbientChance < 0 || c.AmbientChance > 1 {
		return fmt.Errorf("AMBIENT_CHANCE must be within [0,1]")
	}
	// API key and Discord token are optional for development
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
