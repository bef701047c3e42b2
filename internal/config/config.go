package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	HTTPPort        string
	TokenExpiration time.Duration
	GroqAPIKey      string // Empty when the assistant is not configured
	GroqBaseURL     string
	GroqTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "default-super-secret-key") // CHANGE THIS IN PRODUCTION!
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	tokenExpStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	tokenExpHours, err := strconv.Atoi(tokenExpStr)
	if err != nil {
		log.Printf("Warning: Invalid JWT_EXPIRATION_HOURS '%s', using default 24h. Error: %v", tokenExpStr, err)
		tokenExpHours = 24
	}

	// The assistant credential is optional: without it the server still
	// runs and chat requests fail with a configuration error instead of
	// attempting the upstream call.
	groqKey := os.Getenv("GROQ_API_KEY")
	if groqKey == "" {
		groqKey = os.Getenv("GROQ_API_KEY_BACKUP")
	}
	if groqKey == "" {
		log.Println("Warning: GROQ_API_KEY is not set; chat replies will be unavailable.")
	}

	cfg := &Config{
		HTTPPort:        port,
		JWTSecret:       jwtSecret,
		DatabaseURL:     dbURL,
		TokenExpiration: time.Hour * time.Duration(tokenExpHours),
		GroqAPIKey:      groqKey,
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqTimeout:     30 * time.Second,
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, TokenExp=%s", cfg.HTTPPort, cfg.TokenExpiration)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}
