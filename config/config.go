package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all process configuration, populated from environment
// variables. Call Load once at startup and pass the result down; no
// package reads the environment on its own after that.
type Config struct {
	ListenAddr string

	// Primary provider (Groq's OpenAI-compatible endpoint).
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	// Secondary provider (Google Gemini).
	GoogleAPIKey string
	GeminiModel  string

	// Embedding server (OpenAI-compatible, serving a CLIP-family model).
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingDim     int

	// Reference index.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	IndexName     string
	KeyPrefix     string

	// Durable stores.
	ImagesDir  string
	DatasetDir string
}

// Load reads configuration from the environment and creates the image and
// dataset directories if they do not exist yet.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: getEnvString("LISTEN_ADDR", ":8000"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: getEnvString("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnvString("GROQ_MODEL", "llama-3.2-11b-vision-preview"),

		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:  getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),

		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingBaseURL: getEnvString("EMBEDDING_BASE_URL", "http://localhost:7997"),
		EmbeddingModel:   getEnvString("EMBEDDING_MODEL", "clip-ViT-B-32"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIM", 512),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		IndexName:     getEnvString("VECTOR_INDEX_NAME", "bims-examples"),
		KeyPrefix:     getEnvString("VECTOR_KEY_PREFIX", "ref:"),

		ImagesDir:  getEnvString("IMAGES_DIR", "./dataset/images"),
		DatasetDir: getEnvString("DATASET_DIR", "./dataset"),
	}

	for _, dir := range []string{cfg.DatasetDir, cfg.ImagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// getEnvString reads a string from an environment variable
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer from an environment variable
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
