package llm

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/huimingz/commit-composer/internal/config"
)

// CompatibleProvider implements Provider for every backend speaking the
// OpenAI chat completions API: openai, deepseek, ollama and grok.
type CompatibleProvider struct {
	name string
	cfg  config.ModelConfig
}

// NewCompatibleProvider creates a provider for an OpenAI-compatible backend,
// filling in the backend's default base URL when none is configured.
func NewCompatibleProvider(cfg config.ModelConfig) *CompatibleProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURLs[cfg.Provider]
	}
	// Ollama ignores the key but the client refuses an empty one
	if cfg.Provider == "ollama" && cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return &CompatibleProvider{name: cfg.Provider, cfg: cfg}
}

// Name returns the provider name
func (p *CompatibleProvider) Name() string {
	return p.name
}

// GetConfig returns the model configuration
func (p *CompatibleProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// CreateChatModel creates an Eino ChatModel for the backend
func (p *CompatibleProvider) CreateChatModel(ctx context.Context) (model.ChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  p.cfg.APIKey,
		Model:   p.cfg.Model,
		BaseURL: p.cfg.BaseURL,
	})
}
