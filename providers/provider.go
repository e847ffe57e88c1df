package providers

import (
	"context"
	"fmt"

	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	geminiModel "github.com/cloudwego/eino-ext/components/model/gemini"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	openaiACL "github.com/cloudwego/eino-ext/libs/acl/openai"
	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// Inspection verdicts must be reproducible, so every chat model is created
// with zero sampling temperature.
var zeroTemperature = float32(0)

// ChatModelConfig defines the configuration for the primary chat model.
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewChatModel creates the primary vision model against Groq's
// OpenAI-compatible endpoint, with a JSON-object response format so the
// provider is asked for machine-checkable structured output.
func NewChatModel(ctx context.Context, config *ChatModelConfig) (model.ToolCallingChatModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required in config")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	modelName := config.Model
	if modelName == "" {
		modelName = "llama-3.2-11b-vision-preview"
	}

	return openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
		APIKey:      config.APIKey,
		BaseURL:     baseURL,
		Model:       modelName,
		Temperature: &zeroTemperature,
		ResponseFormat: &openaiACL.ChatCompletionResponseFormat{
			Type: openaiACL.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
}

// GeminiConfig defines the configuration for the secondary chat model.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiModel creates the secondary (failover) Google Gemini chat model.
func NewGeminiModel(ctx context.Context, config *GeminiConfig) (model.ToolCallingChatModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required in config")
	}

	modelName := config.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return geminiModel.NewChatModel(ctx, &geminiModel.Config{
		Client:      client,
		Model:       modelName,
		Temperature: &zeroTemperature,
	})
}

// EmbeddingConfig defines the configuration for the embedding model.
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewEmbeddingModel creates the embedder client for the OpenAI-compatible
// embedding server.
func NewEmbeddingModel(ctx context.Context, config *EmbeddingConfig) (einoEmbedding.Embedder, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:7997"
	}

	modelName := config.Model
	if modelName == "" {
		modelName = "clip-ViT-B-32"
	}

	return openaiEmbed.NewEmbedder(ctx, &openaiEmbed.EmbeddingConfig{
		APIKey:  config.APIKey,
		BaseURL: baseURL,
		Model:   modelName,
	})
}
