// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and represent the heart of the application.
package domain

import "strings"

// ProviderType identifies which upstream chat API a request is routed to.
type ProviderType string

const (
	// ProviderOpenRouter is the OpenAI-style chat-completions API ("Provider A").
	ProviderOpenRouter ProviderType = "openrouter"

	// ProviderDashScope is the DashScope text-generation API ("Provider B").
	ProviderDashScope ProviderType = "dashscope"
)

const (
	// DefaultOpenRouterURL is the fixed chat-completions endpoint of OpenRouter.
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultDashScopeURL is the fixed generation endpoint of DashScope.
	DefaultDashScopeURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"
)

// SelectProvider routes a model identifier to its provider.
// A "/" anywhere in the identifier selects OpenRouter; everything else,
// including the empty string, goes to DashScope.
func SelectProvider(model string) ProviderType {
	if strings.Contains(model, "/") {
		return ProviderOpenRouter
	}
	return ProviderDashScope
}

// DisplayName returns a human-readable provider name.
func (p ProviderType) DisplayName() string {
	switch p {
	case ProviderOpenRouter:
		return "OpenRouter"
	case ProviderDashScope:
		return "DashScope"
	default:
		return string(p)
	}
}

// IsValid reports whether p is one of the known providers.
func (p ProviderType) IsValid() bool {
	return p == ProviderOpenRouter || p == ProviderDashScope
}

// Provider represents an upstream endpoint with its configuration.
type Provider struct {
	// Type identifies the provider for routing logic.
	Type ProviderType `json:"type" mapstructure:"type"`

	// URL is the full endpoint the request body is POSTed to.
	URL string `json:"url" mapstructure:"url"`
}

// IsValid checks if the provider has all required fields.
func (p *Provider) IsValid() bool {
	return p.Type.IsValid() && p.URL != ""
}
