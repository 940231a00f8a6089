package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huimingz/commit-composer/internal/composer"
	"github.com/huimingz/commit-composer/internal/config"
	"github.com/huimingz/commit-composer/internal/git"
	"github.com/huimingz/commit-composer/internal/history"
	"github.com/huimingz/commit-composer/internal/llm"
	"github.com/huimingz/commit-composer/internal/log"
	"github.com/huimingz/commit-composer/internal/pipeline"
	"github.com/huimingz/commit-composer/pkg/lang"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.DebugConfig("Configuration", cfg)
	return cfg, nil
}

func openStore(cfg *config.Config) (*history.Store, error) {
	path, err := cfg.GetHistoryPath()
	if err != nil {
		return nil, err
	}
	log.Debug("Using history database: %s", path)

	return history.Open(path)
}

// newComposer builds the message composer. When the chat model cannot be
// created the composer runs without one and every message is a fallback.
func newComposer(ctx context.Context, cfg *config.Config, language string) *composer.Composer {
	chatModel, err := llm.NewProviderFactory().NewChatModel(ctx, cfg, modelName)
	if err != nil {
		log.Warn("%v; messages will be built from the file list", err)
		chatModel = nil
	}

	language = lang.ParseLanguage(cfg.GetLanguage(language)).String()
	log.Debug("Using language: %s", language)

	composerCfg := cfg.GetComposerConfig()
	return composer.New(chatModel,
		composer.WithRetry(llm.FromConfig(cfg.GetRetryConfig())),
		composer.WithTimeout(time.Duration(composerCfg.Timeout)*time.Second),
		composer.WithLanguage(language),
	)
}

// newService wires the full pipeline. The returned func closes the store.
func newService(ctx context.Context, cfg *config.Config, language string) (*pipeline.Service, func(), error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := pipeline.NewService(git.NewExtractor(), newComposer(ctx, cfg, language), store)
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close history database: %v", err)
		}
	}
	return svc, cleanup, nil
}

// languageFlagUsage lists the language codes for the --language flags
func languageFlagUsage() string {
	codes := make([]string, 0, len(lang.SupportedLanguages()))
	for _, l := range lang.SupportedLanguages() {
		codes = append(codes, fmt.Sprintf("%s (%s)", l, l.DisplayName()))
	}
	return "Output language: " + strings.Join(codes, ", ")
}
