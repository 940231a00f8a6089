package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/huimingz/commit-composer/internal/config"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	cfg config.ModelConfig
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(cfg config.ModelConfig) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = config.DefaultGeminiModel
	}
	return &GeminiProvider{cfg: cfg}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// GetConfig returns the model configuration
func (p *GeminiProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// CreateChatModel creates an Eino ChatModel backed by the Gemini API
func (p *GeminiProvider) CreateChatModel(ctx context.Context) (model.ChatModel, error) {
	if p.cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is empty (set GEMINI_API_KEY)")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  p.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  p.cfg.Model,
	})
}
