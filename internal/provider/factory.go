package provider

import (
	"sort"
	"strings"

	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
)

// Factory resolves voice provider adapters, either the one selected by
// configuration or an explicitly named one. Explicit selection matters for
// webhook endpoints: webhooks for in-flight calls must still resolve to the
// provider that placed them even after the configured active provider changes.
type Factory struct {
	providers map[string]VoiceProvider
	active    string
}

// NewFactory creates a factory with all supported providers registered
func NewFactory(cfg *config.AppConfig) *Factory {
	return &Factory{
		providers: map[string]VoiceProvider{
			ProviderVapi:   NewVapiProvider(cfg),
			ProviderRetell: NewRetellProvider(cfg),
		},
		active: strings.ToLower(cfg.ActiveVoiceProvider),
	}
}

// Active returns the adapter selected by configuration
func (f *Factory) Active() (VoiceProvider, error) {
	return f.ByName(f.active)
}

// ActiveName returns the configured provider name
func (f *Factory) ActiveName() string {
	return f.active
}

// ByName returns a specific adapter regardless of configuration
func (f *Factory) ByName(name string) (VoiceProvider, error) {
	p, ok := f.providers[strings.ToLower(name)]
	if !ok {
		return nil, &domain.ConfigurationError{Provider: name, Supported: f.Supported()}
	}
	return p, nil
}

// Supported lists the registered provider names in stable order
func (f *Factory) Supported() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
