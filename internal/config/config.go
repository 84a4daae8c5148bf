// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-insecure-jwt-secret"

type Config struct {
	ServerPort   string
	DatabasePath string
	JWTSecretKey string

	// Language model (OpenAI-compatible endpoint)
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModel     string
	LLMMaxTokens int

	MediaDir    string
	MaxUploadMB int

	Environment string
	LogLevel    string
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
		env = os.Getenv("ENV")
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "data/planner.db"),
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMBaseURL:   getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:     getEnv("LLM_MODEL", "gemini-2.5-flash"),
		LLMMaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 2048),
		MediaDir:     getEnv("MEDIA_DIR", "media"),
		MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", 5),
		Environment:  env,
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces production requirements and fills development defaults.
func (c *Config) Validate() error {
	if c.IsProduction() {
		missing := []string{}
		if c.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if c.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
	} else if c.JWTSecretKey == "" {
		log.Println("Warning: JWT_SECRET_KEY not set; using an insecure development key")
		c.JWTSecretKey = devJWTSecret
	}

	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("SERVER_PORT must be a number: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

// MaxUploadBytes is the task photo size limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
