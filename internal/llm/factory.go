package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/huimingz/commit-composer/internal/config"
	"github.com/huimingz/commit-composer/internal/log"
)

// ProviderFactory creates LLM providers based on configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new ProviderFactory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// Create creates a Provider based on the model configuration
func (f *ProviderFactory) Create(cfg config.ModelConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg), nil
	case "openai", "deepseek", "ollama", "grok":
		return NewCompatibleProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// CreateFromConfig creates a Provider from application config by model name
func (f *ProviderFactory) CreateFromConfig(appCfg *config.Config, modelName string) (Provider, error) {
	modelCfg, err := appCfg.GetModel(modelName)
	if err != nil {
		return nil, err
	}
	return f.Create(*modelCfg)
}

// NewChatModel resolves modelName against appCfg and builds its chat model.
func (f *ProviderFactory) NewChatModel(ctx context.Context, appCfg *config.Config, modelName string) (model.ChatModel, error) {
	provider, err := f.CreateFromConfig(appCfg, modelName)
	if err != nil {
		return nil, err
	}

	cfg := provider.GetConfig()
	log.Debug("Using provider %s, model %s", provider.Name(), cfg.Model)

	chatModel, err := provider.CreateChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s chat model: %w", provider.Name(), err)
	}
	return chatModel, nil
}
