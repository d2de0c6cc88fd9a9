package provider

import (
	"github.com/teampulse/teampulse/internal/config"
)

// Resolve creates the LLMProvider for the configured model backend.
// A nil provider (with nil error) means no backend is configured; callers
// must treat the model as an optional enhancement and fall back to
// deterministic text.
func Resolve(cfg *config.Config) (LLMProvider, error) {
	if cfg.Model.APIKey == "" {
		return nil, nil
	}
	return NewOpenAIProvider(cfg.Model.APIKey, cfg.Model.APIBase, cfg.Model.Name), nil
}
