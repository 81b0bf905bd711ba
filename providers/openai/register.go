package openai

import (
	"github.com/petal-labs/appforge/core"
	"github.com/petal-labs/appforge/providers"
)

func init() {
	providers.Register(providerID, func(apiKey string) core.Provider {
		return New(apiKey)
	})
}
