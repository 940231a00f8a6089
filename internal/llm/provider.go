package llm

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/huimingz/commit-composer/internal/config"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// GetConfig returns the model configuration with provider defaults applied
	GetConfig() config.ModelConfig

	// CreateChatModel creates an Eino ChatModel instance
	CreateChatModel(ctx context.Context) (model.ChatModel, error)
}

// Default API base URLs of the OpenAI-compatible providers
const (
	DeepseekDefaultBaseURL = "https://api.deepseek.com/v1"
	OllamaDefaultBaseURL   = "http://localhost:11434/v1"
	GrokDefaultBaseURL     = "https://api.x.ai/v1"
)

var defaultBaseURLs = map[string]string{
	"deepseek": DeepseekDefaultBaseURL,
	"ollama":   OllamaDefaultBaseURL,
	"grok":     GrokDefaultBaseURL,
}
