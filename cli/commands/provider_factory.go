package commands

import (
	"fmt"

	"github.com/petal-labs/appforge/cli/config"
	"github.com/petal-labs/appforge/core"
	"github.com/petal-labs/appforge/providers"
	"github.com/petal-labs/appforge/providers/openai"
)

// defaultProviderFactory builds OpenAI from its config section. Other IDs go
// through the provider registry with the key alone.
func defaultProviderFactory() ProviderFactory {
	return func(providerID, apiKey string, cfg *config.Config) (core.Provider, error) {
		if providerID == "openai" {
			return openai.New(apiKey, openAIOptions(cfg.GetProvider(providerID))...), nil
		}
		if providers.IsRegistered(providerID) {
			return providers.Create(providerID, apiKey)
		}
		return nil, fmt.Errorf("unsupported provider: %s (available: %v)", providerID, providers.List())
	}
}

func openAIOptions(pc *config.ProviderConfig) []openai.Option {
	if pc == nil {
		return nil
	}
	var opts []openai.Option
	if pc.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(pc.BaseURL))
	}
	if pc.Organization != "" {
		opts = append(opts, openai.WithOrgID(pc.Organization))
	}
	if pc.Timeout > 0 {
		opts = append(opts, openai.WithTimeout(pc.Timeout))
	}
	return opts
}
