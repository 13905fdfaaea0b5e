// Package provider builds the embedding and chat capabilities behind the
// pipeline from a single provider configuration.
package provider

import (
	"context"
	"fmt"
	"os"

	"docqa/internal/config"
	"docqa/internal/domain"
)

// Bundle pairs the embedding and chat capabilities of one provider account.
// A Bundle is safe for concurrent use and is shared between sessions.
type Bundle struct {
	Embedder    domain.Embedder
	Synthesizer domain.Synthesizer
}

// New builds the provider bundle selected by cfg. Credentials are read from
// the environment variable named by cfg.APIKeyEnv, never from the config
// file itself.
func New(ctx context.Context, cfg config.ProviderConfig) (*Bundle, error) {
	switch cfg.Type {
	case "", "googleai":
		return newGoogleAI(ctx, cfg)
	case "openai":
		return newOpenAI(cfg)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("provider %q is not supported", cfg.Type)
	}
}

func resolveAPIKey(cfg config.ProviderConfig) (string, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%w: set %s", domain.ErrMissingAPIKey, cfg.APIKeyEnv)
	}
	return key, nil
}
